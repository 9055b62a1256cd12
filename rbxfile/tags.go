package rbxfile

import (
	"bytes"
	"slices"
)

// Tags returns the instance's collection tags, decoded from the
// NUL-separated blob held by the Tags property.
func (i *Instance) Tags() []string {
	if len(i.tags) == 0 {
		return nil
	}
	var tags []string
	for _, t := range bytes.Split(i.tags, []byte{0}) {
		if len(t) > 0 {
			tags = append(tags, string(t))
		}
	}
	return tags
}

// HasTag reports whether the instance carries tag.
func (i *Instance) HasTag(tag string) bool {
	return slices.Contains(i.Tags(), tag)
}

// AddTag adds tag if it is not already present.
func (i *Instance) AddTag(tag string) {
	tags := i.Tags()
	if tag == "" || slices.Contains(tags, tag) {
		return
	}
	i.setTags(append(tags, tag))
}

// RemoveTag removes tag and reports whether it was present.
func (i *Instance) RemoveTag(tag string) bool {
	tags := i.Tags()
	idx := slices.Index(tags, tag)
	if idx == -1 {
		return false
	}
	i.setTags(slices.Delete(tags, idx, idx+1))
	return true
}

func (i *Instance) setTags(tags []string) {
	blob := []byte{}
	for n, t := range tags {
		if n > 0 {
			blob = append(blob, 0)
		}
		blob = append(blob, t...)
	}
	p := i.Property(tagsProperty)
	if p == nil {
		p = NewProperty(tagsProperty, TypeString)
		i.AddProperty(p)
	}
	if err := p.SetValue(BinaryString(blob)); err != nil {
		i.log().Warn("failed to store tags", "instance", i.FullName(), "err", err)
	}
}
