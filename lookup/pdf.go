package lookup

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ilri/cgmerge/normal"
)

// PDFDir checks for full texts in a local directory. Files are named after
// the DOI, with slashes replaced by dashes, e.g. 10.1016-j.gfs.2019.100306.pdf.
type PDFDir struct {
	Dir string
}

// Filename returns the expected file name for a canonical DOI.
func (p PDFDir) Filename(doi string) string {
	return strings.ReplaceAll(normal.BareDOI(doi), "/", "-") + ".pdf"
}

// PDF returns the file name, if the PDF for a DOI exists.
func (p PDFDir) PDF(doi string) (string, bool) {
	if !normal.IsCanonicalDOI(doi) {
		return "", false
	}
	name := p.Filename(doi)
	fi, err := os.Stat(filepath.Join(p.Dir, name))
	if err != nil || !fi.Mode().IsRegular() {
		return "", false
	}
	return name, true
}
