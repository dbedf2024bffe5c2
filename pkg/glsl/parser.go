package glsl

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Stage is the pipeline stage a shader source targets
type Stage string

const (
	StageUnknown        Stage = "unknown"
	StageVertex         Stage = "vertex"
	StageFragment       Stage = "fragment"
	StageGeometry       Stage = "geometry"
	StageCompute        Stage = "compute"
	StageTessControl    Stage = "tess_control"
	StageTessEvaluation Stage = "tess_evaluation"
)

// IssueLevel represents the severity of a source issue
type IssueLevel int

const (
	LevelWarning IssueLevel = iota
	LevelInfo
)

// Issue is a non-fatal finding in a shader source
type Issue struct {
	Level   IssueLevel
	Line    int
	Message string
}

// Declaration is a uniform or stage interface variable
type Declaration struct {
	Qualifier string // uniform, in, out, attribute, varying
	Type      string
	Name      string
	Array     string // e.g. "[4]", empty when scalar
	Line      int
}

// Source holds what was learned from a shader file
type Source struct {
	Stage    Stage
	Version  string // e.g. "330 core"
	Includes []string
	Uniforms []Declaration
	Inputs   []Declaration
	Outputs  []Declaration
	Lines    int
	Issues   []Issue
}

// ErrEmptySource is returned for sources with no code
var ErrEmptySource = errors.New("empty shader source")

var (
	// #version 330 core
	versionPattern = regexp.MustCompile(`^\s*#\s*version\s+(\d+)(?:\s+(\w+))?`)

	// #pragma stage(fragment) or #pragma stage fragment
	stagePattern = regexp.MustCompile(`^\s*#\s*pragma\s+stage\s*\(?\s*(\w+)\s*\)?`)

	// #include "common.glsl" or #include <lighting.glsl>
	includePattern = regexp.MustCompile(`^\s*#\s*include\s+["<]([^">]+)[">]`)

	// layout(location = 0) in highp vec3 vertexPosition;
	declPattern = regexp.MustCompile(`^\s*(?:layout\s*\([^)]*\)\s*)?(?:(?:flat|smooth|noperspective|centroid|invariant)\s+)*(uniform|in|out|attribute|varying)\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*(\[[^\]]*\])?\s*;`)
)

var extensionStages = map[string]Stage{
	".vert": StageVertex,
	".vs":   StageVertex,
	".frag": StageFragment,
	".fs":   StageFragment,
	".geom": StageGeometry,
	".comp": StageCompute,
	".tesc": StageTessControl,
	".tese": StageTessEvaluation,
}

// StageFromPath guesses the stage from the file extension
func StageFromPath(path string) Stage {
	if s, ok := extensionStages[strings.ToLower(filepath.Ext(path))]; ok {
		return s
	}
	return StageUnknown
}

// ParseStage converts a pragma argument to a Stage
func ParseStage(name string) Stage {
	switch strings.ToLower(name) {
	case "vertex", "vert":
		return StageVertex
	case "fragment", "frag", "pixel":
		return StageFragment
	case "geometry", "geom":
		return StageGeometry
	case "compute", "comp":
		return StageCompute
	case "tess_control", "tesc":
		return StageTessControl
	case "tess_evaluation", "tese":
		return StageTessEvaluation
	default:
		return StageUnknown
	}
}

// Parse scans GLSL source. fallback is used when no #pragma stage is present.
func Parse(src string, fallback Stage) (*Source, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptySource
	}

	result := &Source{Stage: fallback}
	pragmaStage := false
	inBlockComment := false

	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		line, inBlockComment = stripComments(line, inBlockComment)
		if strings.TrimSpace(line) == "" {
			continue
		}

		if matches := versionPattern.FindStringSubmatch(line); matches != nil {
			if result.Version != "" {
				result.Issues = append(result.Issues, Issue{Level: LevelWarning, Line: lineNum, Message: "duplicate #version directive"})
				continue
			}
			result.Version = strings.TrimSpace(matches[1] + " " + matches[2])
			continue
		}

		if matches := stagePattern.FindStringSubmatch(line); matches != nil {
			stage := ParseStage(matches[1])
			if stage == StageUnknown {
				result.Issues = append(result.Issues, Issue{Level: LevelWarning, Line: lineNum, Message: fmt.Sprintf("unknown stage %q", matches[1])})
				continue
			}
			result.Stage = stage
			pragmaStage = true
			continue
		}

		if matches := includePattern.FindStringSubmatch(line); matches != nil {
			result.Includes = append(result.Includes, matches[1])
			continue
		}

		if matches := declPattern.FindStringSubmatch(line); matches != nil {
			decl := Declaration{
				Qualifier: matches[1],
				Type:      matches[2],
				Name:      matches[3],
				Array:     matches[4],
				Line:      lineNum,
			}
			switch decl.Qualifier {
			case "uniform":
				result.Uniforms = append(result.Uniforms, decl)
			case "in", "attribute":
				result.Inputs = append(result.Inputs, decl)
			case "out", "varying":
				result.Outputs = append(result.Outputs, decl)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan shader: %w", err)
	}
	result.Lines = lineNum

	if result.Version == "" {
		result.Issues = append(result.Issues, Issue{Level: LevelInfo, Message: "no #version directive, driver default applies"})
	}
	if result.Stage == StageUnknown && !pragmaStage {
		result.Issues = append(result.Issues, Issue{Level: LevelWarning, Message: "stage not known from extension or #pragma stage"})
	}

	return result, nil
}

// stripComments removes // and /* */ comments, carrying block state across lines
func stripComments(line string, inBlock bool) (string, bool) {
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		if inBlock {
			if strings.HasPrefix(line[i:], "*/") {
				inBlock = false
				i++
			}
			continue
		}
		if strings.HasPrefix(line[i:], "//") {
			break
		}
		if strings.HasPrefix(line[i:], "/*") {
			inBlock = true
			i++
			continue
		}
		sb.WriteByte(line[i])
	}
	return sb.String(), inBlock
}

// UniformNames returns the uniform names in declaration order
func (s *Source) UniformNames() []string {
	names := make([]string, len(s.Uniforms))
	for i, u := range s.Uniforms {
		names[i] = u.Name
	}
	return names
}

// FormatIssue returns a human-readable string for an issue
func FormatIssue(issue Issue) string {
	prefix := "INFO"
	if issue.Level == LevelWarning {
		prefix = "WARNING"
	}
	if issue.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", prefix, issue.Line, issue.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, issue.Message)
}
