package shader

import (
	"sort"
	"strconv"
	"strings"
)

// Flags is the preprocessor definition set of a program. Mutations are cheap;
// the owning program folds the rendered #define block into its content hash
// on the next MaybeReload, which is where the expensive work happens.
type Flags struct {
	defs    map[string]string
	hash    uint32
	hashSet bool
	dirty   bool
}

func (f *Flags) ensure() {
	if f.defs == nil {
		f.defs = make(map[string]string)
	}
}

// Enable adds a value-less #define.
func (f *Flags) Enable(name string) { f.Set(name, "") }

func (f *Flags) Set(name, value string) {
	f.ensure()
	if old, ok := f.defs[name]; ok && old == value {
		return
	}
	f.defs[name] = value
	f.dirty = true
}

func (f *Flags) SetInt(name string, value int) {
	f.Set(name, strconv.Itoa(value))
}

func (f *Flags) SetFloat(name string, value float64) {
	f.Set(name, strconv.FormatFloat(value, 'f', -1, 32))
}

func (f *Flags) Remove(name string) {
	if _, ok := f.defs[name]; !ok {
		return
	}
	delete(f.defs, name)
	f.dirty = true
}

// String renders the definition block, sorted for a stable hash.
func (f *Flags) String() string {
	if len(f.defs) == 0 {
		return ""
	}

	names := make([]string, 0, len(f.defs))
	for name := range f.defs {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString("#define ")
		sb.WriteString(name)
		if value := f.defs[name]; value != "" {
			sb.WriteByte(' ')
			sb.WriteString(value)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// HashSet reports whether UpdateHash has run at least once, i.e. whether the
// owning program has been through its first reload.
func (f *Flags) HashSet() bool { return f.hashSet }

// Updated reports whether any definition changed since the last UpdateHash.
func (f *Flags) Updated() bool { return f.dirty }

func (f *Flags) UpdateHash() uint32 {
	f.hash = hsiehHash([]byte(f.String()), hashSeed)
	f.hashSet = true
	f.dirty = false
	return f.hash
}

func (f *Flags) Clear() {
	f.defs = nil
	f.hash = 0
	f.hashSet = false
	f.dirty = false
}
