package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
)

// CSV writes one row per zone with the annotation columns. Geometry is left
// to the spatial formats; the CSV is for sorting and filtering in a
// spreadsheet.
func CSV(w io.Writer, run *Run) error {
	cw := csv.NewWriter(w)
	header := []string{
		"zone_id", "area_m2", "perimeter_m", "compactness",
		"centroid_lon", "centroid_lat", "size_class",
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, z := range run.Zones {
		row := []string{
			strconv.Itoa(z.ID),
			strconv.FormatFloat(z.AreaM2, 'f', 1, 64),
			strconv.FormatFloat(z.PerimeterM, 'f', 1, 64),
			strconv.FormatFloat(z.Compactness, 'f', 4, 64),
			strconv.FormatFloat(z.CentroidLon, 'f', 7, 64),
			strconv.FormatFloat(z.CentroidLat, 'f', 7, 64),
			z.SizeClass,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "export: write csv row for zone %d", z.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
