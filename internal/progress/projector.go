package progress

import (
	"math"
	"sort"

	"github.com/ecoready/backend/internal/models"
)

// ProjectProgress computes display progress for every locked achievement in
// statuses, most advanced first. Ties keep catalog order.
func ProjectProgress(stats models.Stats, statuses []models.AchievementStatus) []models.AchievementProgress {
	progress := make([]models.AchievementProgress, 0, len(statuses))

	for _, st := range statuses {
		if st.Unlocked {
			continue
		}
		def, ok := LookupAchievement(st.ID)
		if !ok || def.Progress == nil {
			continue
		}

		value, target, text := def.Progress(stats)
		progress = append(progress, models.AchievementProgress{
			AchievementStatus:  st,
			ProgressValue:      value,
			ProgressMax:        target,
			ProgressText:       text,
			ProgressPercentage: percentage(value, target),
		})
	}

	sort.SliceStable(progress, func(i, j int) bool {
		return progress[i].ProgressPercentage > progress[j].ProgressPercentage
	})
	return progress
}

func percentage(value, target float64) float64 {
	if target <= 0 {
		return 100
	}
	return math.Min(value*100/target, 100)
}
