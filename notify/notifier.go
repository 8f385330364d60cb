// Package notify delivers workflow notifications. Delivery is always
// best-effort and at-most-once: a transition that committed is never undone
// or failed because a mail or webhook could not be sent.
package notify

import (
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Notification templates, one per workflow hand-off.
const (
	TemplateOrderCreated             = "order_created"
	TemplateSafetyReviewRequested    = "safety_review_requested"
	TemplateLabEvaluationRequested   = "lab_evaluation_requested"
	TemplateExecutionReady           = "execution_ready"
	TemplateLabReevaluationRequested = "lab_reevaluation_requested"
	TemplateOrderClosed              = "order_closed"
	TemplateOrderRejected            = "order_rejected"
)

// Notifier sends one notification about an order to a recipient list.
type Notifier interface {
	Notify(template string, orderID int64, recipients []string) error
}

// scriptNames maps templates to the legacy mail scripts shipped with the
// system. Templates without a script are silently skipped by ScriptNotifier.
var scriptNames = map[string]string{
	TemplateOrderCreated:             "sendmailpcm.py",
	TemplateSafetyReviewRequested:    "sendmailcipa.py",
	TemplateLabEvaluationRequested:   "sendmaillab.py",
	TemplateExecutionReady:           "sendcipatopcm.py",
	TemplateLabReevaluationRequested: "pcmexeclab.py",
	TemplateOrderClosed:              "labreevaltorequester.py",
	TemplateOrderRejected:            "pcmtorequester.py",
}

// ScriptNotifier spawns the legacy python mail scripts, passing the order
// number and the comma-joined recipient list, exactly as the previous
// backend did. Script output is logged, never inspected.
type ScriptNotifier struct {
	Dir string
}

// NewScriptNotifier creates a ScriptNotifier running scripts from dir.
func NewScriptNotifier(dir string) *ScriptNotifier {
	return &ScriptNotifier{Dir: dir}
}

// Notify starts the script for the template and returns without waiting for
// it to finish.
func (s *ScriptNotifier) Notify(template string, orderID int64, recipients []string) error {
	script, ok := scriptNames[template]
	if !ok {
		log.Printf("⚠️  no mail script for template %q, skipping", template)
		return nil
	}

	cmd := exec.Command("python3",
		filepath.Join(s.Dir, script),
		strconv.FormatInt(orderID, 10),
		strings.Join(recipients, ","),
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting mail script %s: %w", script, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("❌ mail script %s exited with error: %v", script, err)
			return
		}
		log.Printf("✅ mail script %s finished for order %d", script, orderID)
	}()
	return nil
}

// MultiNotifier fans a notification out to every channel. Channel failures
// are collected but each channel still gets its attempt.
type MultiNotifier []Notifier

// Notify sends through every channel, returning the first failure if any.
func (m MultiNotifier) Notify(template string, orderID int64, recipients []string) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(template, orderID, recipients); err != nil {
			log.Printf("❌ notification channel failed (template %s, order %d): %v", template, orderID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
