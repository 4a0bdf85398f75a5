//go:build tools

package mobile

// gomobile bind resolves its binding runtime from this module's go.mod.
import _ "golang.org/x/mobile/bind"
