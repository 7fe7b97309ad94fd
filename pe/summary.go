package pe

import (
	"debug/pe"
	"encoding/hex"

	"github.com/h2non/filetype"
	"github.com/minio/sha256-simd"
)

// Section describes one section of the image.
type Section struct {
	Name           string  `json:"name"`
	VirtualAddress uint32  `json:"virtualAddress"`
	VirtualSize    uint32  `json:"virtualSize"`
	RawSize        uint32  `json:"rawSize"`
	Entropy        float64 `json:"entropy"`
	SHA256         string  `json:"sha256"`
}

// ResourceSummary describes one resource leaf.
type ResourceSummary struct {
	Type     string `json:"type"`
	ID       uint32 `json:"id"`
	Name     string `json:"name,omitempty"`
	Language string `json:"language"`
	Size     int    `json:"size"`
	SHA256   string `json:"sha256"`
	MIME     string `json:"mime"`
}

// Summary is the resource overview printed by the inspect command.
type Summary struct {
	Bits                         int               `json:"bits"`
	TargetMachine                string            `json:"targetMachine"`
	Sections                     []Section         `json:"sections,omitempty"`
	ContainedResourcesByType     map[string]int    `json:"containedResourcesByType,omitempty"`
	ContainedResourcesByLanguage map[string]int    `json:"containedResourcesByLanguage,omitempty"`
	Resources                    []ResourceSummary `json:"resources,omitempty"`
	IconGroups                   []IconGroup       `json:"iconGroups,omitempty"`
}

func machineName(machine uint16) string {
	switch machine {
	case pe.IMAGE_FILE_MACHINE_I386:
		return "x32"
	case pe.IMAGE_FILE_MACHINE_AMD64:
		return "x64"
	case pe.IMAGE_FILE_MACHINE_ARM64:
		return "arm64"
	case pe.IMAGE_FILE_MACHINE_ARMNT:
		return "arm"
	}
	return "unknown"
}

func hash(data []byte) string {
	hashed := sha256.Sum256(data)
	return hex.EncodeToString(hashed[:])
}

// Summary hashes every section and resource of the image.
func (f *File) Summary() (*Summary, error) {
	resources, err := f.Resources()
	if err != nil {
		return nil, err
	}
	groups, err := f.IconGroups()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Bits:                         f.Bits,
		TargetMachine:                machineName(f.Machine),
		Sections:                     make([]Section, len(f.sections)),
		ContainedResourcesByType:     make(map[string]int),
		ContainedResourcesByLanguage: make(map[string]int),
		Resources:                    make([]ResourceSummary, len(resources)),
		IconGroups:                   groups,
	}
	for i, s := range f.sections {
		data := f.sectionData(s)
		summary.Sections[i] = Section{
			Name:           s.name,
			VirtualAddress: s.virtualAddress,
			VirtualSize:    s.virtualSize,
			RawSize:        s.size,
			Entropy:        entropy(data),
			SHA256:         hash(data),
		}
	}
	for i, resource := range resources {
		resourceMime := "Data"
		if kind, err := filetype.Match(resource.data); err == nil && kind.MIME.Value != "" {
			resourceMime = kind.MIME.Value
		}
		language := languageName(resource.Language)
		summary.Resources[i] = ResourceSummary{
			Type:     resource.TypeName,
			ID:       resource.ID,
			Name:     resource.Name,
			Language: language,
			Size:     len(resource.data),
			SHA256:   hash(resource.data),
			MIME:     resourceMime,
		}
		countValue(summary.ContainedResourcesByType, resource.TypeName)
		countValue(summary.ContainedResourcesByLanguage, language)
	}
	return summary, nil
}
