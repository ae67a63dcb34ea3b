package guideversion

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestReadVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{"plain", "2.3.4\n", "2.3.4", nil},
		{"trailing words", "2.3.4 rc1 (testing)\nsecond line\n", "2.3.4", nil},
		{"surrounding space", "  2.3.4  \n", "2.3.4", nil},
		{"no newline", "2.3.4", "2.3.4", nil},
		{"empty", "", "", ErrNoVersion},
		{"blank line", "   \n2.3.4\n", "", ErrNoVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "version.txt")
			writeFile(t, path, tt.content)

			got, err := ReadVersion(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadVersion() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadVersion() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadVersion_Missing(t *testing.T) {
	_, err := ReadVersion(filepath.Join(t.TempDir(), "version.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ReadVersion() error = %v, want ErrNotExist", err)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		version string
		padded  bool
		want    string
	}{
		{"2.3.4", false, "    " + Marker + "2.3.4</h1>\n"},
		{"2.3.4", true, "    " + Marker + "2.3.4<!--xxxxx--></h1>\n"},
		{"2.3.4.10rc", true, "    " + Marker + "2.3.4.10rc<!----></h1>\n"},
		{"2.3.4.10rc12", true, "    " + Marker + "2.3.4.10rc12<!----></h1>\n"},
	}

	for _, tt := range tests {
		if got := Render(tt.version, tt.padded); got != tt.want {
			t.Errorf("Render(%q, %v) = %q, want %q", tt.version, tt.padded, got, tt.want)
		}
	}
}

func TestRender_PaddedWidthIsStable(t *testing.T) {
	short := Render("2.0", true)
	long := Render("2.3.4.1", true)
	if len(short) != len(long) {
		t.Errorf("padded headings differ in width: %d vs %d", len(short), len(long))
	}
}

const guide = `<html>
<body>
    <h1 style="text-align: center;">The Yoshimi User Guide V2.3.3<!--xxxxx--></h1>
<p>Welcome.</p>
</body>
</html>
`

func TestSpliceTemplate(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "indexref.html")
	output := filepath.Join(dir, "doc", "yoshimi_user_guide", "index.html")
	writeFile(t, template, guide)

	res, err := SpliceTemplate(template, output, "2.3.4", false)
	if err != nil {
		t.Fatalf("SpliceTemplate() error = %v", err)
	}
	if res.Headings != 1 {
		t.Errorf("Headings = %d, want 1", res.Headings)
	}

	want := strings.Replace(guide,
		"    "+Marker+"2.3.3<!--xxxxx--></h1>\n",
		"    "+Marker+"2.3.4</h1>\n", 1)
	if got := readFile(t, output); got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
	if got := readFile(t, template); got != guide {
		t.Error("template must not be modified")
	}
}

func TestSpliceInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	writeFile(t, path, guide+"    "+Marker+"old</h1>\n")

	before := readFile(t, path)
	if _, err := SpliceInPlace(path, "2.3.4"); err != nil {
		t.Fatalf("SpliceInPlace() error = %v", err)
	}

	got := readFile(t, path)
	if !strings.Contains(got, Render("2.3.4", true)) {
		t.Errorf("padded heading missing:\n%s", got)
	}
	if !strings.HasSuffix(got, "    "+Marker+"old</h1>\n") {
		t.Error("only the first heading should be rewritten")
	}
	if len(got) != len(before) {
		t.Errorf("padded rewrite changed document size: %d -> %d", len(before), len(got))
	}
}

func TestSpliceInPlace_NoHeading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	writeFile(t, path, "<html></html>\n")

	_, err := SpliceInPlace(path, "2.3.4")
	if !errors.Is(err, ErrHeadingNotFound) {
		t.Fatalf("SpliceInPlace() error = %v, want ErrHeadingNotFound", err)
	}
	if got := readFile(t, path); got != "<html></html>\n" {
		t.Error("document must be untouched when the heading is missing")
	}
}
