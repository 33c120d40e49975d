// Package catalog discovers projects and result files under the data root.
package catalog

import "github.com/starford/gsea-browser/internal/models"

// ResultExt is the recognised result-file extension.
const ResultExt = ".csv"

// Provider is the read-only view of the data root.
type Provider interface {
	// Root returns the absolute data root.
	Root() string
	// Projects returns every project directory, in directory iteration order.
	Projects() ([]models.Project, error)
	// ResultFiles returns every result file of project, in directory iteration order.
	ResultFiles(project string) ([]models.ResultFile, error)
	// Read returns the raw bytes of a result file.
	Read(project, file string) ([]byte, error)
	// Path resolves a result file to its absolute path.
	Path(project, file string) (string, error)
}
