package model

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the item variant. The set is open: any sub-directory of a kind
// stage is a kind.
type Kind string

const (
	KindEmail    Kind = "email"
	KindSocial   Kind = "social"
	KindWhatsApp Kind = "whatsapp"
	KindFiles    Kind = "files"
)

// DefaultKinds are the kinds a fresh vault is scanned for.
var DefaultKinds = []Kind{KindEmail, KindSocial, KindWhatsApp, KindFiles}

var kindDirs = map[Kind]string{
	KindEmail:    "Email",
	KindSocial:   "Social",
	KindWhatsApp: "WhatsApp",
	KindFiles:    "Files",
}

// Dir returns the sub-directory name used for the kind.
func (k Kind) Dir() string {
	if dir, ok := kindDirs[k]; ok {
		return dir
	}
	value := string(k)
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return value
	}
	return string(unicode.ToUpper(r)) + value[size:]
}

var kindPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// IsValid reports whether k is a plain lower case name that can only resolve
// to a direct sub-directory of a stage.
func (k Kind) IsValid() bool {
	return kindPattern.MatchString(string(k))
}

func (k Kind) String() string {
	return string(k)
}

// KindFromDir maps a sub-directory name back to its kind.
func KindFromDir(dir string) Kind {
	return Kind(strings.ToLower(dir))
}

// ParseKinds converts configured kind names, skipping blanks, invalid names
// and duplicates.
func ParseKinds(values []string) []Kind {
	var result []Kind
	seen := map[Kind]bool{}
	for _, value := range values {
		kind := Kind(strings.ToLower(strings.TrimSpace(value)))
		if !kind.IsValid() || seen[kind] {
			continue
		}
		seen[kind] = true
		result = append(result, kind)
	}
	return result
}
