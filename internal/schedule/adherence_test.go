package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-reminder-backend/internal/model"
)

func TestComputeAdherence_SevenDayWindow(t *testing.T) {
	now := at(21, 0) // 2024-05-10
	courses := []model.MedicationCourse{course("a", "2024-04-01", "2024-06-01", "08:00", "20:00")}

	log := model.IntakeLog{}
	taken := 0
	for d := 4; d <= 10 && taken < 9; d++ {
		for _, tm := range []string{"08:00", "20:00"} {
			if taken == 9 {
				break
			}
			log[model.IntakeLogKey(time.Date(2024, 5, d, 0, 0, 0, 0, testLoc).Format("2006-01-02"), "a", tm)] = model.OutcomeTaken
			taken++
		}
	}
	// outside the window, must not count
	log[model.IntakeLogKey("2024-05-03", "a", "08:00")] = model.OutcomeTaken
	// skipped still counts as scheduled
	log[model.IntakeLogKey("2024-05-10", "a", "20:00")] = model.OutcomeSkipped

	snap := ComputeAdherence(courses, log, now)
	assert.Equal(t, 14, snap.ScheduledCount)
	assert.Equal(t, 9, snap.TakenCount)
	require.NotNil(t, snap.Percentage)
	assert.Equal(t, 64, *snap.Percentage)
}

func TestComputeAdherence_NoScheduledIsNull(t *testing.T) {
	now := at(12, 0)
	courses := []model.MedicationCourse{
		course("old", "2024-01-01", "2024-01-31", "08:00"),
		course("bad", "??", "2024-05-31", "08:00"),
	}

	snap := ComputeAdherence(courses, model.IntakeLog{}, now)
	assert.Nil(t, snap.Percentage)
	assert.Equal(t, 0, snap.ScheduledCount)
	assert.Equal(t, 0, snap.TakenCount)

	empty := ComputeAdherence(nil, nil, now)
	assert.Nil(t, empty.Percentage)
}

func TestComputeAdherence_ZeroPercentIsNotNull(t *testing.T) {
	now := at(12, 0)
	courses := []model.MedicationCourse{course("a", "2024-05-10", "2024-05-10", "08:00")}

	snap := ComputeAdherence(courses, model.IntakeLog{}, now)
	require.NotNil(t, snap.Percentage)
	assert.Equal(t, 0, *snap.Percentage)
	assert.Equal(t, 1, snap.ScheduledCount)
}

func TestComputeAdherence_PartialCourseCoverage(t *testing.T) {
	now := at(12, 0) // window 2024-05-04..2024-05-10
	courses := []model.MedicationCourse{
		course("a", "2024-05-08", "2024-05-09", "08:00"),                 // 2 days x 1
		course("b", "2024-05-01", "2024-05-05", "08:00", "12:00", "bad"), // 2 days x 2
	}
	log := model.IntakeLog{
		model.IntakeLogKey("2024-05-08", "a", "08:00"): model.OutcomeTaken,
		model.IntakeLogKey("2024-05-09", "a", "08:00"): model.OutcomeTaken,
		model.IntakeLogKey("2024-05-05", "b", "12:00"): model.OutcomeTaken,
	}

	snap := ComputeAdherence(courses, log, now)
	assert.Equal(t, 6, snap.ScheduledCount)
	assert.Equal(t, 3, snap.TakenCount)
	require.NotNil(t, snap.Percentage)
	assert.Equal(t, 50, *snap.Percentage)
}

func TestComputeAdherence_Rounding(t *testing.T) {
	now := at(12, 0)
	courses := []model.MedicationCourse{course("a", "2024-05-08", "2024-05-10", "08:00")}
	log := model.IntakeLog{
		model.IntakeLogKey("2024-05-08", "a", "08:00"): model.OutcomeTaken,
		model.IntakeLogKey("2024-05-09", "a", "08:00"): model.OutcomeTaken,
	}

	snap := ComputeAdherence(courses, log, now)
	require.NotNil(t, snap.Percentage)
	assert.Equal(t, 67, *snap.Percentage)
}
