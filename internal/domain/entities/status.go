package entities

import (
	"fmt"
	"strings"
)

// Status is a company registration status code.
type Status int

// Registry status codes.
const (
	StatusNoInformation       Status = 0
	StatusRegistered          Status = 1
	StatusTerminated          Status = 2
	StatusBeingTerminated     Status = 3
	StatusInvalidCertificate  Status = 4
	StatusBankruptcy          Status = 5
	StatusBankruptcySanation  Status = 6
	StatusPropertyDisposition Status = 7
	StatusLiquidation         Status = 8
)

var statusLabels = map[Status]string{
	StatusNoInformation:       "інформація відсутня",
	StatusRegistered:          "зареєстровано",
	StatusTerminated:          "припинено",
	StatusBeingTerminated:     "в стані припинення",
	StatusInvalidCertificate:  "зареєстровано, свідоцтво про державну реєстрацію недійсне",
	StatusBankruptcy:          "порушено справу про банкрутство",
	StatusBankruptcySanation:  "порушено справу про банкрутство (санація)",
	StatusPropertyDisposition: "розпорядження майном",
	StatusLiquidation:         "ліквідація",
}

// statusPriority lists statuses from most to least authoritative when
// several records are valid in the same revision.
var statusPriority = []Status{
	StatusRegistered,
	StatusInvalidCertificate,
	StatusBankruptcy,
	StatusBankruptcySanation,
	StatusBeingTerminated,
	StatusTerminated,
}

// ParseStatus resolves a status label, ignoring case and surrounding space.
func ParseStatus(label string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(label))
	for code, l := range statusLabels {
		if l == needle {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, label)
}

// String returns the registry label of the status.
func (s Status) String() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Priority ranks the status for tie-breaking. Higher wins; statuses outside
// the priority list rank zero.
func (s Status) Priority() int {
	for i, st := range statusPriority {
		if st == s {
			return len(statusPriority) - i
		}
	}
	return 0
}
