package monitor

import (
	"fmt"
	"time"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/probe"
)

// alertMessage renders the subject and body sent on a transition.
func alertMessage(ep domain.Endpoint, tr Transition, res probe.Result, at time.Time) (string, string) {
	name := ep.Name
	if name == "" {
		name = ep.URL
	}

	subject := fmt.Sprintf("🚨 %s is DOWN", name)
	if tr == TransitionRecovered {
		subject = fmt.Sprintf("🚀 %s is BACK UP", name)
	}

	httpTxt := "n/a"
	if res.StatusCode != 0 {
		httpTxt = fmt.Sprintf("%d", res.StatusCode)
	}
	latencyTxt := "n/a"
	if res.ResponseTimeMS != nil {
		latencyTxt = fmt.Sprintf("%d ms", *res.ResponseTimeMS)
	}
	reason := res.Reason
	if reason == "" {
		reason = "-"
	}

	body := fmt.Sprintf(
		"URL: %s\nHTTP: %s\nLatency: %s\nReason: %s\nChecked: %s",
		ep.URL, httpTxt, latencyTxt, reason, at.UTC().Format(time.RFC3339),
	)
	return subject, body
}
