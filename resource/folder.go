package resource

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FolderType is the leading part of a resource folder name.
type FolderType string

const (
	FolderValues       FolderType = "values"
	FolderAnim         FolderType = "anim"
	FolderAnimator     FolderType = "animator"
	FolderColor        FolderType = "color"
	FolderDrawable     FolderType = "drawable"
	FolderFont         FolderType = "font"
	FolderInterpolator FolderType = "interpolator"
	FolderLayout       FolderType = "layout"
	FolderMenu         FolderType = "menu"
	FolderMipmap       FolderType = "mipmap"
	FolderRaw          FolderType = "raw"
	FolderTransition   FolderType = "transition"
	FolderXML          FolderType = "xml"
)

var folderTypes = map[FolderType]bool{
	FolderValues: true, FolderAnim: true, FolderAnimator: true, FolderColor: true,
	FolderDrawable: true, FolderFont: true, FolderInterpolator: true, FolderLayout: true,
	FolderMenu: true, FolderMipmap: true, FolderRaw: true, FolderTransition: true,
	FolderXML: true,
}

// IsValid reports whether f is a known folder type.
func (f FolderType) IsValid() bool {
	return folderTypes[f]
}

// HoldsValues reports whether the folder contains value documents rather
// than one file per resource.
func (f FolderType) HoldsValues() bool {
	return f == FolderValues
}

// ResourceType is the type part of a resource key ("string", "drawable", ...).
type ResourceType string

// Folder is a parsed resource folder name: a type plus a configuration.
type Folder struct {
	Type   FolderType
	Config Configuration
}

// ParseFolderName parses names such as "drawable-ldpi" or "values-en-rUS".
func ParseFolderName(name string) (Folder, error) {
	parts := strings.Split(name, "-")
	folderType := FolderType(parts[0])
	if !folderType.IsValid() {
		return Folder{}, fmt.Errorf("resource: unknown folder type %q in %q", parts[0], name)
	}
	config, err := ParseConfiguration(parts[1:])
	if err != nil {
		return Folder{}, fmt.Errorf("resource: folder %q: %w", name, err)
	}
	return Folder{Type: folderType, Config: config}, nil
}

// Name returns the normalized folder name, e.g. "values-en-rUS".
func (f Folder) Name() string {
	if f.Config.IsDefault() {
		return string(f.Type)
	}
	return string(f.Type) + "-" + f.Config.String()
}

// ResourceType returns the type of the resources held by a file-based folder.
func (f Folder) ResourceType() ResourceType {
	return ResourceType(f.Type)
}

// ResourceNameFromFile derives a resource name from a file name by dropping
// its extension; nine-patch images lose the whole ".9.png" suffix.
func ResourceNameFromFile(fileName string) string {
	base := filepath.Base(fileName)
	if strings.HasSuffix(strings.ToLower(base), ".9.png") {
		return base[:len(base)-len(".9.png")]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsIgnoredName reports whether a file or folder name is skipped when
// scanning: hidden names and editor backups ending in "~".
func IsIgnoredName(name string) bool {
	return name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}
