package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the signal table as CSV string.
func RenderCSV(signals []SignalRow) string {
	var sb strings.Builder

	sb.WriteString("seq,time,side,price,quantity,level\n")

	for _, s := range signals {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%.6f,%.6f,%d\n",
			s.Seq, s.Time, s.Side, s.Price, s.Quantity, s.Level))
	}

	return sb.String()
}
