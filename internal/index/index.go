package index

import "github.com/starford/gsea-browser/internal/models"

// GeneIndex defines the catalog index operations used outside this package.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type GeneIndex interface {
	UpsertResult(r ResultRow, records []models.EnrichmentRecord) error
	MarkFailed(project, file, checksum string, cause error) error
	DeleteResult(project, file string) error
	DeleteProject(project string) (int, error)
	GetResult(project, file string) (*ResultRow, error)
	Results() ([]ResultRow, error)
	FindGene(gene string, significantOnly bool, limit int) ([]GeneHit, error)
	AllChecksums() (map[Key]string, error)
	Close() error
}

// Verify *DB satisfies GeneIndex at compile time.
var _ GeneIndex = (*DB)(nil)
