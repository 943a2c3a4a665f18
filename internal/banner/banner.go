// Package banner renders the startup banner.
package banner

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const art = `       _
  ___ (_) _   _   __ _
 / __|| || | | | / _' |
| (__ | || |_| || (_| |
 \___||_| \__, | \__,_|
          |___/`

var (
	artStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafaf")).Bold(true)
	taglineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8a8a")).Italic(true)
	versionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d7af5f"))
)

// Banner returns the banner for the given version, ending in a blank line.
func Banner(version string) string {
	var b strings.Builder
	b.WriteString(artStyle.Render(art))
	b.WriteString("  ")
	b.WriteString(versionStyle.Render(version))
	b.WriteByte('\n')
	b.WriteString(taglineStyle.Render("mountain names in running text"))
	b.WriteString("\n\n")
	return b.String()
}

// Plain returns the banner without styling.
func Plain(version string) string {
	return fmt.Sprintf("%s  %s\nmountain names in running text\n\n", art, version)
}
