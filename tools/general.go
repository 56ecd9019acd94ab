package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/uhatikus/UAIssistant/model"
)

// CurrentTime reports the current wall-clock time, optionally in a
// requested time zone. The model uses it to ground relative periods
// like "last week".
type CurrentTime struct{}

func (t *CurrentTime) Spec() Spec {
	return Spec{
		Name:        "get_current_time",
		Description: "Returns the current time (by default: in UTC). This function should be used to identify time periods like last day, last week or last month, etc.",
		Params: []Param{
			{
				Name:        "timezone_str",
				Type:        "string",
				Description: "IANA time zone name, for example 'Europe/Berlin'.",
				Default:     "UTC",
			},
		},
	}
}

func (t *CurrentTime) Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error) {
	zone := args.String("timezone_str", "UTC")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", nil, fmt.Errorf("unknown time zone %q: %w", zone, err)
	}
	now := time.Now().In(loc).Format("02 Jan 2006, 15:04:05, MST")
	return fmt.Sprintf("The current time is %s", now), nil, nil
}
