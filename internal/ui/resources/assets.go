// Package resources serves the dashboard's stylesheet and scripts.
package resources

// StaticDirectoryPath is the static asset directory relative to the module root.
const StaticDirectoryPath = "internal/ui/resources/static"

// StaticPath returns the URL path of a static asset.
func StaticPath(name string) string {
	return "/static/" + name
}
