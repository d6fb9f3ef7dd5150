package model

import "regexp"

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// UserPalette is the rotation of colors handed to newly added users.
var UserPalette = []string{
	"#4CAF50", "#2196F3", "#FF9800", "#E91E63",
	"#9C27B0", "#00BCD4", "#FFC107", "#F44336",
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PaletteColor returns the color for the n-th user.
func PaletteColor(n int) string {
	if n < 0 {
		n = -n
	}
	return UserPalette[n%len(UserPalette)]
}

// ValidColor reports whether c is a #RRGGBB hex color.
func ValidColor(c string) bool {
	return hexColorRegexp.MatchString(c)
}
