// Package config loads an optional text configuration file that
// overrides fields of offsets.Config (spec.md §4.2, "an external
// collaborator may override fields from a text config file"), and
// validates the merge map supplied on the command line
// (spec.md §6 DumperOptions.merge_map).
//
// This mirrors the original implementation's serde/toml-derived
// Config (original_source/dumper/src/config.rs), translated from
// Option<usize> fields to pointer fields so "absent" and "zero" stay
// distinguishable.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/itsethra/uesdk/internal/offsets"
)

// file is the on-disk shape of the config, deserialized with PascalCase
// keys to match the original TOML layout.
type file struct {
	Stride       *uint32 `toml:"Stride"`
	ProcessEvent *uint32 `toml:"ProcessEvent"`
	LevelActors  *uint32 `toml:"LevelActors"`

	FUObjectItem *offsetsFUObjectItem `toml:"FUObjectItem"`
	UObject      *offsetsUObject      `toml:"UObject"`
	UField       *offsetsUField       `toml:"UField"`
	UStruct      *offsetsUStruct      `toml:"UStruct"`
	UEnum        *offsetsUEnum        `toml:"UEnum"`
	FField       *offsetsFField       `toml:"FField"`
	FFieldClass  *offsetsFFieldClass  `toml:"FFieldClass"`
	FProperty    *offsetsFProperty    `toml:"FProperty"`
	UFunction    *offsetsUFunction    `toml:"UFunction"`
}

type offsetsFUObjectItem struct {
	Object *uint32 `toml:"Object"`
}
type offsetsUObject struct {
	Class *uint32 `toml:"Class"`
	Name  *uint32 `toml:"Name"`
	Outer *uint32 `toml:"Outer"`
}
type offsetsUField struct {
	Next *uint32 `toml:"Next"`
}
type offsetsUStruct struct {
	SuperStruct   *uint32 `toml:"SuperStruct"`
	ChildrenProps *uint32 `toml:"ChildrenProps"`
	PropsSize     *uint32 `toml:"PropsSize"`
}
type offsetsUEnum struct {
	Names *uint32 `toml:"Names"`
}
type offsetsFField struct {
	Class *uint32 `toml:"Class"`
	Name  *uint32 `toml:"Name"`
	Next  *uint32 `toml:"Next"`
}
type offsetsFFieldClass struct {
	Name *uint32 `toml:"Name"`
}
type offsetsFProperty struct {
	ElementSize *uint32 `toml:"ElementSize"`
	ArrayDim    *uint32 `toml:"ArrayDim"`
	Offset      *uint32 `toml:"Offset"`
	PropFlags   *uint32 `toml:"PropFlags"`
	Size        *uint32 `toml:"Size"`
	BoolVars    *uint32 `toml:"BoolVars"`
}
type offsetsUFunction struct {
	Flags *uint32 `toml:"Flags"`
	Func  *uint32 `toml:"Func"`
}

// Load reads path (if non-empty) and overlays it on top of
// offsets.Default(). An empty path returns the defaults unmodified.
func Load(path string) (offsets.Config, error) {
	cfg := offsets.Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config file %q", path)
	}

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return cfg, errors.Wrapf(err, "parsing config file %q", path)
	}
	f.apply(&cfg)
	return cfg, nil
}

func set(dst *uint32, src *uint32) {
	if src != nil {
		*dst = *src
	}
}

func (f file) apply(c *offsets.Config) {
	set(&c.Stride, f.Stride)
	set(&c.ProcessEventVTableIndex, f.ProcessEvent)
	set(&c.LevelActorsOffset, f.LevelActors)

	if o := f.FUObjectItem; o != nil {
		set(&c.FUObjectItem.Object, o.Object)
	}
	if o := f.UObject; o != nil {
		set(&c.UObject.Class, o.Class)
		set(&c.UObject.Name, o.Name)
		set(&c.UObject.Outer, o.Outer)
	}
	if o := f.UField; o != nil {
		set(&c.UField.Next, o.Next)
	}
	if o := f.UStruct; o != nil {
		set(&c.UStruct.SuperStruct, o.SuperStruct)
		set(&c.UStruct.ChildrenProps, o.ChildrenProps)
		set(&c.UStruct.PropsSize, o.PropsSize)
	}
	if o := f.UEnum; o != nil {
		set(&c.UEnum.Names, o.Names)
	}
	if o := f.FField; o != nil {
		set(&c.FField.Class, o.Class)
		set(&c.FField.Name, o.Name)
		set(&c.FField.Next, o.Next)
	}
	if o := f.FFieldClass; o != nil {
		set(&c.FFieldClass.Name, o.Name)
	}
	if o := f.FProperty; o != nil {
		set(&c.FProperty.ElementSize, o.ElementSize)
		set(&c.FProperty.ArrayDim, o.ArrayDim)
		set(&c.FProperty.Offset, o.Offset)
		set(&c.FProperty.PropFlags, o.PropFlags)
		set(&c.FProperty.Size, o.Size)
		set(&c.FProperty.BoolVars, o.BoolVars)
	}
	if o := f.UFunction; o != nil {
		set(&c.UFunction.Flags, o.Flags)
		set(&c.UFunction.Func, o.Func)
	}
}

// ParseMergeMap turns repeated "target:consumer" command-line entries
// into the merge map spec.md §6 describes (target -> consumer), and
// validates the round-trip requirement from spec.md §8: a consumer
// must never itself appear as a merge key, or composing the rewrite
// with itself would not be idempotent.
func ParseMergeMap(entries []string) (map[string]string, error) {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		target, consumer, ok := splitOnce(e, ':')
		if !ok {
			return nil, errors.Errorf("malformed merge entry %q, want target:consumer", e)
		}
		m[target] = consumer
	}
	for target, consumer := range m {
		if _, consumerIsAlsoKey := m[consumer]; consumerIsAlsoKey {
			return nil, errors.Errorf(
				"merge consumer %q of %q is itself a merge key; chained merges are not allowed",
				consumer, target)
		}
	}
	return m, nil
}

func splitOnce(s string, sep byte) (before, after string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
