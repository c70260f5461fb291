package gravity

import (
	"fmt"
	"strings"
)

// FormatCorrection renders a result as "corrected (raw: x, temp: +y, ...)".
// Results without any applied component render as the bare corrected value.
func FormatCorrection(res CorrectionResult) string {
	if res.Corrections.Empty() {
		return fmt.Sprintf("%.4f", res.CorrectedSG)
	}
	parts := []string{fmt.Sprintf("raw: %.4f", res.RawReading)}
	if v := res.Corrections.Temperature; v != nil {
		parts = append(parts, fmt.Sprintf("temp: %+.4f", *v))
	}
	if v := res.Corrections.Baseline; v != nil {
		parts = append(parts, fmt.Sprintf("baseline: %+.4f", *v))
	}
	if v := res.Corrections.Alcohol; v != nil {
		parts = append(parts, fmt.Sprintf("alcohol: %+.4f", *v))
	}
	return fmt.Sprintf("%.4f (%s)", res.CorrectedSG, strings.Join(parts, ", "))
}
