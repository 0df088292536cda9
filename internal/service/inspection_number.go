package service

import (
	"fmt"
	"strings"
	"time"
)

// unknownOrderRef is substituted when an inspection is started without a
// resolvable order reference.
const unknownOrderRef = "UNKNOWN"

// GenerateInspectionNumber mints the human-readable display number stamped on
// an inspection report at creation, e.g. INS-2025-1002-20250117-093045 for
// order ORD-2025-1002. The order-type prefix (ORD/SMP/PRD) is stripped so the
// number reads as a plain order reference. The second-resolution timestamp
// keeps numbers unique without any counter state; the report's real primary
// key is its uuid.
//
// Total function: any order id, including empty, yields a valid number.
func GenerateInspectionNumber(orderID string, now time.Time) string {
	ref := unknownOrderRef
	if orderID != "" {
		parts := strings.Split(orderID, "-")
		if len(parts) >= 3 {
			ref = strings.Join(parts[1:], "-")
		} else {
			ref = orderID
		}
	}
	return fmt.Sprintf("INS-%s-%s", ref, now.Format("20060102-150405"))
}
