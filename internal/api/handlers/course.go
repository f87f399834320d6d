package handlers

import (
	"net/http"

	"github.com/fairwave/backend/internal/game"
	"github.com/gin-gonic/gin"
)

// ListCourses returns the available courses with summary info
// GET /api/v1/courses
func ListCourses(c *gin.Context) {
	course, err := game.DefaultCourse()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "course data unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": []gin.H{
			{
				"slug":      course.Slug,
				"name":      course.Name,
				"holes":     course.Holes(),
				"total_par": course.TotalPar(),
			},
		},
	})
}

// GetCourse returns the full geometry of one course for client-side rendering
// GET /api/v1/courses/:slug
func GetCourse(c *gin.Context) {
	course, err := game.CourseBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	holes := make([]gin.H, 0, course.Holes())
	for i := range course.Levels {
		lvl := &course.Levels[i]
		tuning := game.TuningFor(lvl)
		holes = append(holes, gin.H{
			"index":       i,
			"name":        lvl.Name,
			"par":         lvl.Par,
			"width":       lvl.Width,
			"height":      lvl.Height,
			"rects":       lvl.Rects,
			"hazards":     lvl.Hazards,
			"start":       lvl.Start,
			"hole":        lvl.ResolveHole(tuning.Capture.Radius),
			"open_green":  lvl.OpenGreen,
			"ball_radius": tuning.BallRadius,
			"max_power":   tuning.MaxPower,
			"power_scale": tuning.PowerScale,
			"min_drag":    tuning.MinDrag,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":      course.Slug,
		"name":      course.Name,
		"total_par": course.TotalPar(),
		"holes":     holes,
	})
}
