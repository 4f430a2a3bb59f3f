package pricing

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/google/uuid"
)

var exportHeader = []string{"code", "name", "gross_price", "promo_price", "base_price", "net_price", "net_display"}

// ExportCSV evaluates a simulation and writes its lines as CSV. Raw prices
// keep full precision; only net_display is rounded.
func (s *Service) ExportCSV(ctx context.Context, id uuid.UUID, w io.Writer) error {
	eval, err := s.Evaluate(ctx, id)
	if err != nil {
		return err
	}
	return writeEvaluationCSV(w, eval)
}

func writeEvaluationCSV(w io.Writer, eval Evaluation) error {
	buf := bufio.NewWriter(w)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, line := range eval.Lines {
		promo := ""
		if line.PromoPrice != nil {
			promo = formatRaw(*line.PromoPrice)
		}
		row := []string{
			line.Code,
			line.Name,
			formatRaw(line.GrossPrice),
			promo,
			formatRaw(line.BasePrice),
			formatRaw(line.NetPrice),
			line.NetDisplay,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
