package export

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// WriteAll writes the requested formats into dir, one file set per format,
// named after the slugged place. The metadata sidecar is always written.
// Returns the paths created.
func WriteAll(dir string, formats []string, run *Run) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create dir %s", dir)
	}
	stem := Slugify(run.Place)
	if stem == "" {
		stem = "zones"
	}

	var paths []string
	write := func(name string, fn func(f *os.File) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", path)
		}
		if err := fn(f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "export: close %s", path)
		}
		paths = append(paths, path)
		return nil
	}

	if err := write(stem+"-metadata.json", func(f *os.File) error { return Metadata(f, run) }); err != nil {
		return nil, err
	}

	for _, format := range formats {
		var err error
		switch format {
		case "geojson":
			err = write(stem+".geojson", func(f *os.File) error { return GeoJSON(f, run) })
		case "csv":
			err = write(stem+".csv", func(f *os.File) error { return CSV(f, run) })
		case "kml":
			err = write(stem+".kml", func(f *os.File) error { return KML(f, run) })
		case "kmz":
			err = write(stem+".kmz", func(f *os.File) error { return KMZ(f, run) })
		case "shapefile":
			path := filepath.Join(dir, stem+".shp")
			if err = Shapefile(path, run); err == nil {
				paths = append(paths, path)
			}
		default:
			err = eris.Errorf("export: unknown format %q", format)
		}
		if err != nil {
			return nil, err
		}
	}

	zap.L().Info("results exported",
		zap.String("dir", dir),
		zap.Strings("formats", formats),
		zap.Int("zones", len(run.Zones)),
	)
	return paths, nil
}
