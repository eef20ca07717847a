package analytics

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"homepulse/server/internal/models"
)

var scoringTime = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// goodComp is a comparable that scores near the top of every factor.
func goodComp(price float64) models.ComparableProperty {
	closeDate := scoringTime.AddDate(0, 0, -30)
	return models.ComparableProperty{
		AdjustedPrice:      price,
		DistanceMiles:      fptr(0.5),
		ComparabilityGrade: "A",
		StandardStatus:     models.StatusClosed,
		CloseDate:          &closeDate,
		BuildingArea:       fptr(1800),
		Bedrooms:           iptr(3),
		Bathrooms:          fptr(2),
		YearBuilt:          iptr(1995),
		ListPrice:          fptr(price),
		Latitude:           fptr(32.75),
		Longitude:          fptr(-97.33),
	}
}

func goodComps(n int) []models.ComparableProperty {
	comps := make([]models.ComparableProperty, n)
	for i := range comps {
		comps[i] = goodComp(400000)
	}
	return comps
}

func TestScoreConfidence_EmptyInput(t *testing.T) {
	report := ScoreConfidenceAt(scoringTime, nil)

	assert.Equal(t, 0.0, report.Score)
	assert.Equal(t, "None", report.Level)
	assert.Equal(t, []string{"No comparable properties found"}, report.Recommendations)
	assert.Equal(t, 0, report.ReliabilityPercentage.Percentage)
}

func TestScoreConfidence_SampleSizeFloor(t *testing.T) {
	// Two comps sit below the FHA minimum of three.
	report := ScoreConfidenceAt(scoringTime, goodComps(2))
	assert.Equal(t, 0.0, report.Breakdown.SampleSize)

	found := false
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "3 comparables") {
			found = true
		}
	}
	assert.True(t, found, "expected a recommendation naming the FHA minimum of 3")

	// Exactly three comps clears the floor at 10 points.
	report = ScoreConfidenceAt(scoringTime, goodComps(3))
	assert.Equal(t, 10.0, report.Breakdown.SampleSize)
}

func TestScoreConfidence_IdealSetScoresFull(t *testing.T) {
	report := ScoreConfidenceAt(scoringTime, goodComps(10))

	assert.Equal(t, 100.0, report.Score)
	assert.Equal(t, "Very High", report.Level)
	assert.Equal(t, 25.0, report.Breakdown.SampleSize)
	assert.Equal(t, 20.0, report.Breakdown.DataCompleteness)
	assert.Equal(t, 20.0, report.Breakdown.MarketStability)
	assert.Equal(t, 15.0, report.Breakdown.TimeRelevance)
	assert.Equal(t, 10.0, report.Breakdown.GeographicConcentration)
	assert.Equal(t, 10.0, report.Breakdown.ComparabilityQuality)

	// Only the overall recommendation, nothing to remediate.
	assert.Len(t, report.Recommendations, 1)
	assert.Equal(t, 100, report.ReliabilityPercentage.Percentage)
}

func TestScoreConfidence_ZeroVarianceStability(t *testing.T) {
	comps := goodComps(5)
	for i := range comps {
		comps[i].AdjustedPrice = 425000
	}

	report := ScoreConfidenceAt(scoringTime, comps)
	assert.Equal(t, 20.0, report.Breakdown.MarketStability)
}

func TestScoreConfidence_SingleCompStabilityFallback(t *testing.T) {
	report := ScoreConfidenceAt(scoringTime, goodComps(1))

	// Variance over one comp is meaningless: flat midpoint, no nagging.
	assert.Equal(t, 10.0, report.Breakdown.MarketStability)
	for _, rec := range report.Recommendations[1:] {
		assert.NotContains(t, rec, "dispers")
	}
}

func TestScoreConfidence_RandomSetsStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	grades := []string{"A", "B", "C", "D", "F"}
	statuses := []string{models.StatusClosed, models.StatusActive, models.StatusPending}

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(50)
		comps := make([]models.ComparableProperty, n)
		for i := range comps {
			c := models.ComparableProperty{
				AdjustedPrice:      50000 + rng.Float64()*950000,
				ComparabilityGrade: grades[rng.Intn(len(grades))],
				StandardStatus:     statuses[rng.Intn(len(statuses))],
			}
			if rng.Intn(2) == 0 {
				c.DistanceMiles = fptr(rng.Float64() * 20)
			}
			if rng.Intn(2) == 0 {
				closeDate := scoringTime.AddDate(0, 0, -rng.Intn(400))
				c.CloseDate = &closeDate
			}
			if rng.Intn(2) == 0 {
				c.BuildingArea = fptr(1000 + rng.Float64()*3000)
				c.Bedrooms = iptr(2 + rng.Intn(4))
				c.Bathrooms = fptr(float64(1 + rng.Intn(3)))
			}
			if rng.Intn(2) == 0 {
				c.YearBuilt = iptr(1950 + rng.Intn(70))
				c.ListPrice = fptr(c.AdjustedPrice)
				c.Latitude = fptr(32 + rng.Float64())
				c.Longitude = fptr(-97 - rng.Float64())
			}
			comps[i] = c
		}

		report := ScoreConfidenceAt(scoringTime, comps)
		sum := report.Breakdown.SampleSize + report.Breakdown.DataCompleteness +
			report.Breakdown.MarketStability + report.Breakdown.TimeRelevance +
			report.Breakdown.GeographicConcentration + report.Breakdown.ComparabilityQuality

		assert.GreaterOrEqual(t, sum, 0.0)
		assert.LessOrEqual(t, sum, 100.0)
		assert.InDelta(t, sum, report.Score, 0.05)
		assert.GreaterOrEqual(t, report.Score, 0.0)
		assert.LessOrEqual(t, report.Score, 100.0)
	}
}

func confidenceLevelRank(level string) int {
	switch level {
	case "Very Low":
		return 0
	case "Low":
		return 1
	case "Medium":
		return 2
	case "High":
		return 3
	case "Very High":
		return 4
	default:
		return -1
	}
}

func TestConfidenceLevel_MonotonicInScore(t *testing.T) {
	prev := -1
	for score := 0.0; score <= 100.0; score += 0.5 {
		rank := confidenceLevelRank(confidenceLevel(score))
		assert.GreaterOrEqual(t, rank, prev, "level rank regressed at score %.1f", score)
		prev = rank
	}
}

func TestScoreConfidence_ImprovingOneFactorNeverLowersLevel(t *testing.T) {
	// Hold five factors fixed and walk sample size upward.
	prev := -1
	for n := 1; n <= 12; n++ {
		report := ScoreConfidenceAt(scoringTime, goodComps(n))
		rank := confidenceLevelRank(report.Level)
		assert.GreaterOrEqual(t, rank, prev, "level regressed at %d comps", n)
		prev = rank
	}
}

func TestScoreConfidence_TimeRelevanceAgainstClosedSales(t *testing.T) {
	comps := goodComps(5)
	// Three of five closed sales are stale.
	for i := 0; i < 3; i++ {
		stale := scoringTime.AddDate(0, 0, -200)
		comps[i].CloseDate = &stale
	}

	report := ScoreConfidenceAt(scoringTime, comps)
	// 40% recent → 9 points.
	assert.Equal(t, 9.0, report.Breakdown.TimeRelevance)
}

func TestScoreConfidence_GeographicSpread(t *testing.T) {
	comps := goodComps(4)
	for i := range comps {
		comps[i].DistanceMiles = fptr(7.0)
	}

	report := ScoreConfidenceAt(scoringTime, comps)
	assert.Equal(t, 2.0, report.Breakdown.GeographicConcentration)
	assert.Greater(t, len(report.Recommendations), 1)
}

func TestFillDistances(t *testing.T) {
	subject := models.Subject{Latitude: fptr(32.7555), Longitude: fptr(-97.3308)}

	withDistance := goodComp(400000)
	withDistance.DistanceMiles = fptr(3.0)

	withCoords := goodComp(400000)
	withCoords.DistanceMiles = nil
	// Roughly 0.69 miles north of the subject.
	withCoords.Latitude = fptr(32.7655)
	withCoords.Longitude = fptr(-97.3308)

	noCoords := goodComp(400000)
	noCoords.DistanceMiles = nil
	noCoords.Latitude = nil
	noCoords.Longitude = nil

	comps := []models.ComparableProperty{withDistance, withCoords, noCoords}
	FillDistances(subject, comps)

	// Explicit distances are preserved.
	assert.Equal(t, 3.0, *comps[0].DistanceMiles)

	// Computed geodesically from coordinates.
	assert.NotNil(t, comps[1].DistanceMiles)
	assert.InDelta(t, 0.69, *comps[1].DistanceMiles, 0.05)

	// Nothing to compute from.
	assert.Nil(t, comps[2].DistanceMiles)
}

func TestFillDistances_NoSubjectCoordinates(t *testing.T) {
	comps := []models.ComparableProperty{goodComp(400000)}
	comps[0].DistanceMiles = nil

	FillDistances(models.Subject{}, comps)
	assert.Nil(t, comps[0].DistanceMiles)
}
