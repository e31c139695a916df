package utils

import "mvdan.cc/xurls/v2"

var strictURL = xurls.Strict()

// IsURL reports whether s is exactly one absolute URL with a scheme.
func IsURL(s string) bool {
	loc := strictURL.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
