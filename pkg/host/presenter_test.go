package host

import (
	"go/build"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var presenterFiles = map[string]string{
	"linux":   "presenter_linux.go",
	"windows": "presenter_windows.go",
	"darwin":  "presenter_other.go",
	"freebsd": "presenter_other.go",
}

func TestSystemPresenterPerOS(t *testing.T) {
	for goos, want := range presenterFiles {
		ctx := build.Default
		ctx.GOOS = goos
		pkg, err := ctx.ImportDir(".", 0)
		require.NoError(t, err, goos)

		var got []string
		for _, f := range pkg.GoFiles {
			if strings.HasPrefix(f, "presenter_") {
				got = append(got, f)
			}
		}
		assert.Equal(t, []string{want}, got, goos)
	}
}

// TestVetPerOS type-checks the package for each presenter's GOOS. It needs
// the go tool and the module cache, so it only runs when
// PUSHNOTIFICATION_VET_GOOS is set.
func TestVetPerOS(t *testing.T) {
	if os.Getenv("PUSHNOTIFICATION_VET_GOOS") == "" {
		t.Skip("set PUSHNOTIFICATION_VET_GOOS=1 to vet every presenter")
	}
	gobin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go tool not on PATH")
	}
	for goos := range presenterFiles {
		cmd := exec.Command(gobin, "vet", ".")
		cmd.Env = append(os.Environ(), "GOOS="+goos, "CGO_ENABLED=0")
		out, err := cmd.CombinedOutput()
		assert.NoError(t, err, "GOOS=%s\n%s", goos, out)
	}
}
