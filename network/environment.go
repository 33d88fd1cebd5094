package network

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModifyEnvironment rewrites the cron schedule of an external YAML workflow
// file based on the collective agent states. When the mean published state
// exceeds 0.5 the schedule's first cron entry becomes
// "floor(60/(mean+1)) * * * *", so higher states schedule more frequent
// runs. The heuristic is carried over from the original system and has no
// validated rationale; treat it as policy, not scheduling law.
//
// The read-modify-write is not transactional: a crash between read and
// write can leave the file corrupted.
//
// It returns true when the file was rewritten, false when no file was given
// or the mean state was below the threshold.
func (n *Network) ModifyEnvironment(workflowFile string) (bool, error) {
	if workflowFile == "" {
		n.logger.Info("no workflow file specified for environment modification")
		return false, nil
	}

	avg, ok := n.averageEmitterState()
	if !ok {
		n.logger.Warn("no agents registered, skipping environment modification")
		return false, nil
	}

	if avg <= 0.5 {
		n.logger.Info("average agent state too low for environment modification", "average", avg)
		return false, nil
	}

	raw, err := os.ReadFile(workflowFile)
	if err != nil {
		return false, fmt.Errorf("read workflow %s: %w", workflowFile, err)
	}

	var workflow map[string]any
	if err := yaml.Unmarshal(raw, &workflow); err != nil {
		return false, fmt.Errorf("parse workflow %s: %w", workflowFile, err)
	}

	minute := int(60 / (avg + 1))
	cron := fmt.Sprintf("%d * * * *", minute)

	if on, ok := workflow["on"].(map[string]any); ok {
		if schedule, ok := on["schedule"].([]any); ok && len(schedule) > 0 {
			if entry, ok := schedule[0].(map[string]any); ok {
				entry["cron"] = cron
				n.logger.Info("modified workflow schedule", "cron", cron)
			}
		}
	}

	out, err := yaml.Marshal(workflow)
	if err != nil {
		return false, fmt.Errorf("encode workflow %s: %w", workflowFile, err)
	}

	if err := os.WriteFile(workflowFile, out, 0o644); err != nil {
		return false, fmt.Errorf("write workflow %s: %w", workflowFile, err)
	}

	return true, nil
}
