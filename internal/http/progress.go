package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ProgressController serves the monthly progress report.
type ProgressController struct {
	reports ReportService
}

func NewProgressController(reports ReportService) *ProgressController {
	return &ProgressController{reports: reports}
}

type monthlyReportResponse struct {
	Msg           string   `json:"msg"`
	MonthsArr     []string `json:"monthsArr"`
	ArrOfWords    []int64  `json:"arrOfWords"`
	ArrOfMastered []int64  `json:"arrOfMastered"`
}

// Monthly returns per-month added and mastered counts for the last
// :selectedMonth months, ending with the current one.
func (pc *ProgressController) Monthly(c *gin.Context) {
	months, err := strconv.Atoi(c.Param("selectedMonth"))
	if err != nil {
		respondBadRequest(c, "selectedMonth must be a number")
		return
	}

	report, err := pc.reports.MonthlyReport(c.Request.Context(), GetUserID(c), months)
	if err != nil {
		respondServiceError(c, err, "monthly report")
		return
	}

	c.JSON(http.StatusOK, monthlyReportResponse{
		Msg:           "Monthly report",
		MonthsArr:     report.Months,
		ArrOfWords:    report.WordsAdded,
		ArrOfMastered: report.WordsMastered,
	})
}
