package wizard

import (
	"log"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/state"
)

// Controller guards navigation between wizard steps
type Controller struct {
	forms     *state.FormStore
	documents *state.DocumentStore
}

// NewController creates a step controller over the two stores
func NewController(forms *state.FormStore, documents *state.DocumentStore) *Controller {
	return &Controller{
		forms:     forms,
		documents: documents,
	}
}

// CanEnter reports whether the wizard may move to step given the current state
func (c *Controller) CanEnter(step models.WizardStep) bool {
	switch step {
	case models.StepInitial:
		return true
	case models.StepFollowUp:
		return c.forms.Snapshot().FormData.HasBasics()
	case models.StepPreview:
		doc, ok := c.documents.Get(models.DocumentOverview)
		return ok && doc.Status == models.StatusComplete
	default:
		return false
	}
}

// RequestStep moves the wizard to step when allowed. A rejected request
// leaves the state untouched and returns false.
func (c *Controller) RequestStep(step models.WizardStep) bool {
	if !c.CanEnter(step) {
		log.Printf(`{"level":"info","message":"Step change rejected","requested_step":"%s","current_step":"%s"}`,
			step, c.forms.Snapshot().CurrentStep)
		return false
	}

	c.forms.SetStep(step)
	return true
}

// CurrentStep returns the step the wizard is on
func (c *Controller) CurrentStep() models.WizardStep {
	return c.forms.Snapshot().CurrentStep
}

// EnsureReachableStep moves the wizard back to the initial step when the
// restored step could not be entered from the restored state. It returns
// the step the wizard ends up on.
func (c *Controller) EnsureReachableStep() models.WizardStep {
	current := c.CurrentStep()
	if c.CanEnter(current) {
		return current
	}

	log.Printf(`{"level":"warn","message":"Restored step is not reachable, returning to initial","restored_step":"%s"}`, current)
	c.forms.SetStep(models.StepInitial)
	return models.StepInitial
}
