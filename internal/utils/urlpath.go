package utils

import "strings"

// ObjectKeyFromURL extracts the object file name from a public storage URL:
// everything after the last "/". Callers prefix it with the product folder to
// rebuild the full storage key.
func ObjectKeyFromURL(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
