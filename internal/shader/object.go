package shader

import (
	"os"
	"path/filepath"
	"strings"

	"Arbor3D/internal/logger"
	"go.uber.org/zap"
)

// mainMarker distinguishes inline GLSL text from a file name.
const mainMarker = "void main()"

// DefaultSourceDir is where file-based shader sources are fetched from
// unless the owning program overrides it.
const DefaultSourceDir = "shaders"

// Object is one shader compilation unit: its source (inline text or a file
// under the source dir), its definition strings and its content hash. An
// Object is owned by exactly one Program, which destroys it on Release.
type Object struct {
	stage   Stage
	srcData string // inline source text, or a file name
	srcText string
	rawDefs string // fixed definitions supplied at creation
	modDefs string // definitions injected by the owning program's Flags
	dir     string
}

func NewObject(stage Stage, srcData, defs string) *Object {
	return &Object{
		stage:   stage,
		srcData: srcData,
		rawDefs: defs,
		dir:     DefaultSourceDir,
	}
}

func (so *Object) Stage() Stage { return so.stage }

func (so *Object) inline() bool { return strings.Contains(so.srcData, mainMarker) }

// name identifies the object in diagnostics.
func (so *Object) name() string {
	if so.inline() {
		return "inline-" + so.stage.String()
	}
	return so.srcData
}

// SetDefinitions replaces the modifiable definition string; the raw
// definitions given at creation are untouched.
func (so *Object) SetDefinitions(defs string) { so.modDefs = defs }

// ReloadFromTextOrFile re-fetches the source and reports whether it changed.
// A missing file logs an error and leaves the source empty; compilation of
// the empty object then fails without taking the process down.
func (so *Object) ReloadFromTextOrFile() bool {
	newText := so.fetchSource()
	if newText != so.srcText {
		so.srcText = newText
		return true
	}
	return false
}

func (so *Object) fetchSource() string {
	if so.inline() {
		return so.srcData
	}

	path := filepath.Join(so.dir, so.srcData)
	buf, err := os.ReadFile(path)
	if err != nil {
		logger.Log.Error("shader source file not found", zap.String("path", path), zap.Error(err))
		return ""
	}
	return string(buf)
}

// Hash digests source text and both definition strings.
func (so *Object) Hash() uint32 {
	hash := hsiehHash([]byte(so.srcText), hashSeed)
	hash = hsiehHash([]byte(so.modDefs), hash)
	hash = hsiehHash([]byte(so.rawDefs), hash)
	return hash
}

// size feeds the program-cache key alongside the hash.
func (so *Object) size() int {
	return len(so.srcText) + len(so.modDefs) + len(so.rawDefs)
}

// extractVersionDirective splits a "#version ..." line (with its newline)
// out of src.
func extractVersionDirective(src string) (rest, version string) {
	pos := strings.Index(src, "#version ")
	if pos < 0 {
		return src, ""
	}

	eol := strings.IndexByte(src[pos:], '\n')
	if eol < 0 {
		return src[:pos], src[pos:]
	}
	end := pos + eol + 1
	return src[:pos] + src[end:], src[pos:end]
}

func ensureEndsWith(s, suffix string) string {
	if s != "" && !strings.HasSuffix(s, suffix) {
		return s + suffix
	}
	return s
}

// AssembleSource builds the text handed to the compiler: version directive
// first (a directive in the definitions overrides one in the source), then
// the definition flags, then "#line 1" so compiler diagnostics map back to
// the original source line numbers.
func (so *Object) AssembleSource() string {
	defFlags := so.rawDefs + "\n" + so.modDefs

	src, version := extractVersionDirective(so.srcText)
	defFlags, defVersion := extractVersionDirective(defFlags)
	if defVersion != "" {
		version = defVersion
	}

	version = ensureEndsWith(version, "\n")
	defFlags = ensureEndsWith(defFlags, "\n")

	var sb strings.Builder
	sb.WriteString("// SHADER VERSION\n")
	sb.WriteString(version)
	sb.WriteString("// SHADER FLAGS\n")
	sb.WriteString(defFlags)
	sb.WriteString("// SHADER SOURCE\n")
	sb.WriteString("#line 1\n")
	sb.WriteString(src)
	return sb.String()
}

// CreateAndCompile compiles the assembled source. On failure the diagnostic
// is appended to programLog and 0 is returned; the caller decides whether
// the overall link can proceed.
func (so *Object) CreateAndCompile(b Backend, programLog *strings.Builder) (uint32, bool) {
	id := b.CreateShader(so.stage)
	b.ShaderSource(id, so.AssembleSource())

	if !b.CompileShader(id) {
		infoLog := b.ShaderInfoLog(id)
		logger.Log.Warn("shader compile failed",
			zap.String("shader", so.name()),
			zap.String("log", infoLog))
		programLog.WriteString(infoLog)
		b.DeleteShader(id)
		return 0, false
	}

	return id, true
}
