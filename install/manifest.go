package install

import (
	"fmt"
	"sort"
)

// Manifest is a fully parsed install manifest: its header, tags, and file
// entries.
type Manifest struct {
	Header  Header
	Tags    []Tag
	Entries []Entry
}

// Parse decodes a complete install manifest from data.
func Parse(data []byte) (*Manifest, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	pos := headerSize

	bitMaskSize := header.BitMaskSize()
	tags := make([]Tag, 0, header.TagCount)
	for i := uint16(0); i < header.TagCount; i++ {
		tag, n, err := parseTag(data[pos:], bitMaskSize)
		if err != nil {
			return nil, fmt.Errorf("tag %d: %w", i, err)
		}
		tags = append(tags, tag)
		pos += n
	}

	entries := make([]Entry, 0, header.EntryCount)
	for i := uint32(0); i < header.EntryCount; i++ {
		entry, n, err := parseEntry(data[pos:])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, entry)
		pos += n
	}

	m := &Manifest{Header: header, Tags: tags, Entries: entries}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that tag and entry counts match the header and that
// every tag's bit mask has the size the entry count requires.
func (m *Manifest) Validate() error {
	if len(m.Tags) != int(m.Header.TagCount) {
		return fmt.Errorf("%w: header says %d tags, have %d", ErrBitMaskSizeMismatch, m.Header.TagCount, len(m.Tags))
	}
	if len(m.Entries) != int(m.Header.EntryCount) {
		return fmt.Errorf("%w: header says %d entries, have %d", ErrBitMaskSizeMismatch, m.Header.EntryCount, len(m.Entries))
	}
	want := m.Header.BitMaskSize()
	for _, t := range m.Tags {
		if len(t.BitMask) != want {
			return fmt.Errorf("%w: tag %q has %d bytes, want %d", ErrBitMaskSizeMismatch, t.Name, len(t.BitMask), want)
		}
	}
	return nil
}

// Build serializes the manifest back to its wire form.
func (m *Manifest) Build() []byte {
	out := WriteHeader(nil, m.Header)
	for _, t := range m.Tags {
		out = writeTag(out, t)
	}
	for _, e := range m.Entries {
		out = writeEntry(out, e)
	}
	return out
}

// TotalInstallSize sums the file size of every entry.
func (m *Manifest) TotalInstallSize() uint64 {
	var total uint64
	for _, e := range m.Entries {
		total += uint64(e.FileSize)
	}
	return total
}

// FindTag returns the tag named name, if present.
func (m *Manifest) FindTag(name string) (Tag, bool) {
	for _, t := range m.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// FilesForTag returns the indices of the entries selected by the named tag.
func (m *Manifest) FilesForTag(name string) []int {
	tag, ok := m.FindTag(name)
	if !ok {
		return nil
	}
	var out []int
	for i := range m.Entries {
		if tag.HasFile(i) {
			out = append(out, i)
		}
	}
	return out
}

// FilesForTags returns the indices selected by every named tag
// (intersection). An unknown tag name yields an empty result.
func (m *Manifest) FilesForTags(names []string) []int {
	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		tag, ok := m.FindTag(name)
		if !ok {
			return nil
		}
		tags = append(tags, tag)
	}
	var out []int
	for i := range m.Entries {
		all := true
		for _, tag := range tags {
			if !tag.HasFile(i) {
				all = false
				break
			}
		}
		if all {
			out = append(out, i)
		}
	}
	return out
}

// FilesForAnyTag returns the indices selected by any named tag (union).
func (m *Manifest) FilesForAnyTag(names []string) []int {
	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		if tag, ok := m.FindTag(name); ok {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for i := range m.Entries {
		for _, tag := range tags {
			if tag.HasFile(i) && !seen[i] {
				seen[i] = true
				out = append(out, i)
				break
			}
		}
	}
	sort.Ints(out)
	return out
}

// InstallSize sums the file size of every entry selected by the named tags
// (intersection semantics, matching FilesForTags).
func (m *Manifest) InstallSize(names []string) uint64 {
	var total uint64
	for _, i := range m.FilesForTags(names) {
		total += uint64(m.Entries[i].FileSize)
	}
	return total
}

// FindFiles returns the indices of entries whose path matches a
// case-insensitive glob pattern.
func (m *Manifest) FindFiles(pattern string) []int {
	var out []int
	for i, e := range m.Entries {
		if e.MatchesPattern(pattern) {
			out = append(out, i)
		}
	}
	return out
}

// Extensions returns the sorted, deduplicated set of lowercase file
// extensions present in the manifest.
func (m *Manifest) Extensions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range m.Entries {
		ext := e.Extension()
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
