package index

import (
	"log/slog"

	"github.com/starford/gsea-browser/internal/catalog"
	"github.com/starford/gsea-browser/internal/checksum"
	"github.com/starford/gsea-browser/internal/parser"
)

// Sync walks the data root and brings the index up to date:
//   - new/changed result files are parsed and upserted
//   - files that fail to load are recorded with their error
//   - files removed from disk are deleted from the index
func Sync(db *DB, cat catalog.Provider, logger *slog.Logger) error {
	disk, err := listDisk(cat)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	for k := range disk {
		data, err := cat.Read(k.Project, k.File)
		if err != nil {
			logger.Warn("sync: read failed",
				slog.String("project", k.Project), slog.String("file", k.File), slog.String("error", err.Error()))
			continue
		}
		if cs, ok := checksums[k]; ok && cs == checksum.Sum(data) {
			continue
		}
		if err := indexData(db, k.Project, k.File, data); err != nil {
			logger.Warn("sync: load failed",
				slog.String("project", k.Project), slog.String("file", k.File), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("project", k.Project), slog.String("file", k.File))
		}
	}

	for k := range checksums {
		if _, ok := disk[k]; ok {
			continue
		}
		if err := db.DeleteResult(k.Project, k.File); err != nil {
			logger.Warn("sync: delete failed",
				slog.String("project", k.Project), slog.String("file", k.File), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("project", k.Project), slog.String("file", k.File))
		}
	}

	return nil
}

// listDisk returns every result file currently under the root. A project
// that vanishes mid-walk is skipped.
func listDisk(cat catalog.Provider) (map[Key]struct{}, error) {
	projects, err := cat.Projects()
	if err != nil {
		return nil, err
	}
	out := make(map[Key]struct{})
	for _, p := range projects {
		files, err := cat.ResultFiles(p.Name)
		if err != nil {
			continue
		}
		for _, f := range files {
			out[Key{Project: p.Name, File: f.File}] = struct{}{}
		}
	}
	return out, nil
}

// indexFile reads one result file and indexes it.
func indexFile(db *DB, cat catalog.Provider, project, file string) error {
	data, err := cat.Read(project, file)
	if err != nil {
		return err
	}
	return indexData(db, project, file, data)
}

// indexData parses data and upserts it. A file that does not parse is
// marked failed and the parse error is returned.
func indexData(db *DB, project, file string, data []byte) error {
	cs := checksum.Sum(data)
	records, err := parser.ParseBytes(data, project+"/"+file)
	if err != nil {
		if markErr := db.MarkFailed(project, file, cs, err); markErr != nil {
			return markErr
		}
		return err
	}
	return db.UpsertResult(ResultRow{Project: project, File: file, Checksum: cs}, records)
}
