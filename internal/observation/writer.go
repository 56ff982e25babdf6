package observation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/DreamingVaishu/AgriShield-AI/internal/catalogue"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"github.com/DreamingVaishu/AgriShield-AI/internal/leafnet"
)

// WriteResult prints one prediction with its ranked alternatives and the
// treatment advice in the configured locale.
func WriteResult(w io.Writer, result *leafnet.PredictionResult, cat *catalogue.Catalogue, locale string) {
	label := result.Top.Label
	fmt.Fprintf(w, "%s (%s)  %.1f%%\n", cat.LocalizedName(&label, locale), label.Severity, result.Top.Confidence)
	if result.DemoMode {
		fmt.Fprintln(w, "  (heuristic mode, no model loaded)")
	}
	for i := 1; i < len(result.Ranked); i++ {
		p := result.Ranked[i]
		fmt.Fprintf(w, "  %-28s %.1f%%\n", cat.LocalizedName(&p.Label, locale), p.Confidence)
	}
	if treatment := cat.TreatmentText(&label, locale); treatment != "" {
		fmt.Fprintf(w, "\nTreatment: %s\n", treatment)
	}
}

// WriteTable renders scan history as an aligned table.
func WriteTable(w io.Writer, scans []datastore.ScanRecord) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tDISEASE\tSEVERITY\tCONFIDENCE\tSYNCED")
	for i := range scans {
		s := &scans[i]
		synced := "no"
		if s.Synced == 1 {
			synced = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%s\n",
			time.UnixMilli(s.Timestamp).Format("2006-01-02 15:04"),
			s.DiseaseName, s.Severity, s.Confidence, synced)
	}
	return tw.Flush()
}

// WriteCSV renders scan history as CSV with a header row.
func WriteCSV(w io.Writer, scans []datastore.ScanRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "timestamp", "disease", "severity", "confidence", "image_path", "device_id", "synced"}
	if err := cw.Write(header); err != nil {
		return errors.New(err).
			Component("observation").
			Category(errors.CategoryFileIO).
			Build()
	}
	for i := range scans {
		s := &scans[i]
		row := []string{
			s.ID,
			strconv.FormatInt(s.Timestamp, 10),
			s.DiseaseName,
			s.Severity,
			strconv.FormatFloat(s.Confidence, 'f', 1, 64),
			s.ImagePath,
			s.DeviceID,
			strconv.Itoa(s.Synced),
		}
		if err := cw.Write(row); err != nil {
			return errors.New(err).
				Component("observation").
				Category(errors.CategoryFileIO).
				Build()
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.New(err).
			Component("observation").
			Category(errors.CategoryFileIO).
			Build()
	}
	return nil
}
