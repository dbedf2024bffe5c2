package cmd

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/joshuaeyu/plum/internal/core/services"
	"github.com/joshuaeyu/plum/pkg/glsl"
	"github.com/joshuaeyu/plum/pkg/ui"
)

var (
	inspectCopy   bool
	inspectSource bool
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Describe an asset file",
	Long: `Load a file as an asset, without tracking it, and describe its content.

  - image  : dimensions and decoder
  - model  : vertex/triangle counts, objects, materials and bounds
  - shader : stage, version, uniforms, inputs/outputs and scan warnings

Use --source to print a shader with syntax highlighting and --copy to
put the summary (or the source, with --source) on the clipboard.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectCopy, "copy", "c", false, "Copy the output to the clipboard")
	inspectCmd.Flags().BoolVarP(&inspectSource, "source", "s", false, "Print the shader source")
}

func runInspect(cmd *cobra.Command, args []string) error {
	resp, err := inspectService.Execute(getContext(), args[0])
	if err != nil {
		fmt.Println(ui.FormatError("Failed to inspect " + args[0]))
		return err
	}

	if inspectSource {
		if resp.Shader == nil {
			return fmt.Errorf("%s is a %s, not a shader", resp.Path, resp.Kind)
		}
		fmt.Println(highlightGLSL(resp.Shader.Source))
		if inspectCopy {
			return copyToClipboard(resp.Shader.Source)
		}
		return nil
	}

	lines := describe(resp)
	fmt.Println(ui.FormatTitle(resp.Path))
	fmt.Println()
	for _, l := range lines {
		fmt.Println(l)
	}

	if inspectCopy {
		return copyToClipboard(strings.Join(describePlain(resp), "\n"))
	}
	return nil
}

type field struct {
	key   string
	value string
}

func fields(resp *services.InspectResponse) []field {
	out := []field{
		{"Kind", string(resp.Kind)},
		{"Size", ui.FormatBytes(resp.Size)},
		{"Modified", resp.ModTime.Local().Format(appConfig.TimestampFormat)},
	}
	switch {
	case !resp.Tracked:
		out = append(out, field{"Tracked", "no"})
	case resp.Hot:
		out = append(out, field{"Tracked", "yes (hot reload)"})
	default:
		out = append(out, field{"Tracked", "yes"})
	}

	if img := resp.Image; img != nil {
		out = append(out,
			field{"Format", img.Format},
			field{"Dimensions", fmt.Sprintf("%d x %d", img.Width, img.Height)},
		)
	}
	if m := resp.Model; m != nil {
		out = append(out,
			field{"Vertices", fmt.Sprintf("%d positions, %d normals, %d texcoords", m.Positions, m.Normals, m.Texcoords)},
			field{"Triangles", fmt.Sprintf("%d", m.Triangles)},
			field{"Bounds", fmt.Sprintf("(%.3g, %.3g, %.3g) .. (%.3g, %.3g, %.3g)", m.Min[0], m.Min[1], m.Min[2], m.Max[0], m.Max[1], m.Max[2])},
			field{"Radius", fmt.Sprintf("%.4g", m.Radius)},
		)
		if len(m.Objects) > 0 {
			out = append(out, field{"Objects", strings.Join(m.Objects, ", ")})
		}
		if len(m.Materials) > 0 {
			out = append(out, field{"Materials", strings.Join(m.Materials, ", ")})
		}
	}
	if s := resp.Shader; s != nil {
		info := s.Info
		version := info.Version
		if version == "" {
			version = "(driver default)"
		}
		out = append(out,
			field{"Stage", string(info.Stage)},
			field{"Version", version},
			field{"Lines", fmt.Sprintf("%d", info.Lines)},
		)
		if len(info.Uniforms) > 0 {
			out = append(out, field{"Uniforms", declarations(info.Uniforms)})
		}
		if len(info.Inputs) > 0 {
			out = append(out, field{"Inputs", declarations(info.Inputs)})
		}
		if len(info.Outputs) > 0 {
			out = append(out, field{"Outputs", declarations(info.Outputs)})
		}
		if len(info.Includes) > 0 {
			out = append(out, field{"Includes", strings.Join(info.Includes, ", ")})
		}
	}
	return out
}

func describe(resp *services.InspectResponse) []string {
	var lines []string
	for _, f := range fields(resp) {
		lines = append(lines, ui.RenderKeyValue(f.key, f.value))
	}
	if resp.Shader != nil {
		for _, issue := range resp.Shader.Info.Issues {
			if issue.Level == glsl.LevelWarning {
				lines = append(lines, ui.FormatWarning(glsl.FormatIssue(issue)))
			} else {
				lines = append(lines, ui.FormatMuted(glsl.FormatIssue(issue)))
			}
		}
	}
	return lines
}

func describePlain(resp *services.InspectResponse) []string {
	var lines []string
	for _, f := range fields(resp) {
		lines = append(lines, f.key+": "+f.value)
	}
	if resp.Shader != nil {
		for _, issue := range resp.Shader.Info.Issues {
			lines = append(lines, glsl.FormatIssue(issue))
		}
	}
	return lines
}

func declarations(decls []glsl.Declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.Type + " " + d.Name + d.Array
	}
	return strings.Join(parts, ", ")
}

func copyToClipboard(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	fmt.Println(ui.FormatSuccess("Copied to clipboard"))
	return nil
}

// highlightGLSL applies syntax highlighting to shader source
func highlightGLSL(content string) string {
	lexer := lexers.Get("glsl")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	var buf strings.Builder
	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}
	if err := formatters.TTY16m.Format(&buf, style, iterator); err != nil {
		return content
	}
	return buf.String()
}
