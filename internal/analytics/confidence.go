package analytics

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"homepulse/server/internal/models"
)

const (
	// Minimum number of comparables FHA appraisal guidelines require.
	fhaMinimumComps = 3

	// A closed sale older than this no longer counts as recent.
	recentSaleWindow = 90 * 24 * time.Hour

	metersPerMile = 1609.344
)

// FillDistances computes the geodesic distance from the subject for every
// comparable that has coordinates but no distance yet. Comparables with an
// explicit distance are left alone.
func FillDistances(subject models.Subject, comps []models.ComparableProperty) {
	if subject.Latitude == nil || subject.Longitude == nil {
		return
	}
	from := orb.Point{*subject.Longitude, *subject.Latitude}
	for i := range comps {
		c := &comps[i]
		if c.DistanceMiles != nil || c.Latitude == nil || c.Longitude == nil {
			continue
		}
		miles := geo.Distance(from, orb.Point{*c.Longitude, *c.Latitude}) / metersPerMile
		c.DistanceMiles = &miles
	}
}

// ScoreConfidence rates how trustworthy a CMA estimate is given the
// comparable set behind it, as a 0-100 score built from six independently
// scored factors.
func ScoreConfidence(comps []models.ComparableProperty) models.ConfidenceReport {
	return ScoreConfidenceAt(time.Now(), comps)
}

// ScoreConfidenceAt is ScoreConfidence with an explicit reference time for
// the time-relevance factor.
func ScoreConfidenceAt(now time.Time, comps []models.ComparableProperty) models.ConfidenceReport {
	if len(comps) == 0 {
		return models.ConfidenceReport{
			Score:           0,
			Level:           "None",
			Recommendations: []string{"No comparable properties found"},
			ReliabilityPercentage: models.Reliability{
				Percentage:  0,
				Description: "No comparable data is available to support this estimate",
			},
		}
	}

	sampleScore, sampleRec := scoreSampleSize(len(comps))
	completenessScore, completenessRec := scoreDataCompleteness(comps)
	stabilityScore, stabilityRec := scoreMarketStability(comps)
	timeScore, timeRec := scoreTimeRelevance(now, comps)
	geoScore, geoRec := scoreGeographicConcentration(comps)
	qualityScore, qualityRec := scoreComparabilityQuality(comps)

	breakdown := models.ConfidenceBreakdown{
		SampleSize:              sampleScore,
		DataCompleteness:        completenessScore,
		MarketStability:         stabilityScore,
		TimeRelevance:           timeScore,
		GeographicConcentration: geoScore,
		ComparabilityQuality:    qualityScore,
	}
	total := round1(sampleScore + completenessScore + stabilityScore + timeScore + geoScore + qualityScore)

	recommendations := []string{overallRecommendation(total)}
	for _, rec := range []string{sampleRec, completenessRec, stabilityRec, timeRec, geoRec, qualityRec} {
		if rec != "" {
			recommendations = append(recommendations, rec)
		}
	}

	return models.ConfidenceReport{
		Score:           total,
		Level:           confidenceLevel(total),
		Breakdown:       breakdown,
		Recommendations: recommendations,
		ReliabilityPercentage: models.Reliability{
			Percentage:  int(math.Round(total)),
			Description: reliabilityDescription(total),
		},
	}
}

// scoreSampleSize: max 25 points.
func scoreSampleSize(count int) (float64, string) {
	switch {
	case count >= 10:
		return 25, ""
	case count >= 7:
		return 20, ""
	case count >= 5:
		return 15, "Consider widening the search area or date range to find more comparables"
	case count >= fhaMinimumComps:
		return 10, "Sample size is small; the estimate may swing noticeably with each additional comparable"
	default:
		return 0, "Fewer than 3 comparables is below the FHA minimum; this estimate should not be relied on"
	}
}

// scoreDataCompleteness: max 20 points. Completeness is the share of the
// seven critical fields that are populated across the whole set.
func scoreDataCompleteness(comps []models.ComparableProperty) (float64, string) {
	filled := 0
	for _, c := range comps {
		if c.BuildingArea != nil {
			filled++
		}
		if c.Bedrooms != nil {
			filled++
		}
		if c.Bathrooms != nil {
			filled++
		}
		if c.YearBuilt != nil {
			filled++
		}
		if c.ListPrice != nil {
			filled++
		}
		if c.Latitude != nil {
			filled++
		}
		if c.Longitude != nil {
			filled++
		}
	}
	pct := float64(filled) / float64(7*len(comps)) * 100

	switch {
	case pct >= 95:
		return 20, ""
	case pct >= 85:
		return 16, ""
	case pct >= 75:
		return 12, ""
	case pct >= 60:
		return 8, "Comparable records are missing key fields; verify adjustments against original listings"
	default:
		return 4, "Comparable data is largely incomplete; adjustments are unreliable without the missing fields"
	}
}

// scoreMarketStability: max 20 points, from the coefficient of variation
// of adjusted prices. With fewer than two comparables there is no
// meaningful variance, so a flat midpoint score is returned.
func scoreMarketStability(comps []models.ComparableProperty) (float64, string) {
	if len(comps) < 2 {
		return 10, ""
	}
	prices := make([]float64, len(comps))
	for i, c := range comps {
		prices[i] = c.AdjustedPrice
	}
	cv := CoefficientOfVariation(prices)

	switch {
	case cv < 5:
		return 20, ""
	case cv < 10:
		return 16, ""
	case cv < 15:
		return 12, ""
	case cv < 25:
		return 8, "Adjusted prices vary widely; the market may be shifting or the comparables poorly matched"
	default:
		return 4, "Adjusted prices are highly dispersed; treat the point estimate as a broad range instead"
	}
}

// scoreTimeRelevance: max 15 points, from the share of closed comparables
// that sold within the last 90 days. With no dated closed sales the share
// is zero.
func scoreTimeRelevance(now time.Time, comps []models.ComparableProperty) (float64, string) {
	closed, recent := 0, 0
	for _, c := range comps {
		if c.StandardStatus != models.StatusClosed || c.CloseDate == nil {
			continue
		}
		closed++
		if now.Sub(*c.CloseDate) <= recentSaleWindow {
			recent++
		}
	}
	pct := 0.0
	if closed > 0 {
		pct = float64(recent) / float64(closed) * 100
	}

	switch {
	case pct >= 80:
		return 15, ""
	case pct >= 60:
		return 12, ""
	case pct >= 40:
		return 9, ""
	case pct >= 20:
		return 6, "Most comparable sales are more than 90 days old and may not reflect current conditions"
	default:
		return 3, "Comparable sales are stale; recent market movement is not captured in this estimate"
	}
}

// scoreGeographicConcentration: max 10 points, from the mean distance to
// the subject. Comparables without a distance are excluded from the mean;
// if none carry one, a flat midpoint score is returned.
func scoreGeographicConcentration(comps []models.ComparableProperty) (float64, string) {
	var distances []float64
	for _, c := range comps {
		if c.DistanceMiles != nil {
			distances = append(distances, *c.DistanceMiles)
		}
	}
	if len(distances) == 0 {
		return 6, ""
	}
	avg := Mean(distances)

	switch {
	case avg < 1:
		return 10, ""
	case avg < 2:
		return 8, ""
	case avg < 3:
		return 6, ""
	case avg < 5:
		return 4, ""
	default:
		return 2, "Comparables average over 5 miles from the subject; location adjustments carry extra uncertainty"
	}
}

// scoreComparabilityQuality: max 10 points, from the share of comparables
// graded A or B.
func scoreComparabilityQuality(comps []models.ComparableProperty) (float64, string) {
	good := 0
	for _, c := range comps {
		if c.ComparabilityGrade == "A" || c.ComparabilityGrade == "B" {
			good++
		}
	}
	pct := float64(good) / float64(len(comps)) * 100

	switch {
	case pct >= 70:
		return 10, ""
	case pct >= 50:
		return 8, ""
	case pct >= 30:
		return 6, ""
	case pct >= 15:
		return 4, "Few comparables grade A or B; the set differs materially from the subject property"
	default:
		return 2, "The comparable set is a poor match for the subject; large adjustments dominate the estimate"
	}
}

func confidenceLevel(score float64) string {
	switch {
	case score >= 85:
		return "Very High"
	case score >= 70:
		return "High"
	case score >= 55:
		return "Medium"
	case score >= 40:
		return "Low"
	default:
		return "Very Low"
	}
}

// overallRecommendation is chosen purely from the total score, independent
// of which factors drove it.
func overallRecommendation(score float64) string {
	switch {
	case score >= 70:
		return "This estimate is well supported and can be used with confidence"
	case score >= 55:
		return "This estimate provides reasonable guidance but should be paired with local expertise"
	case score >= 40:
		return "Use this estimate with caution; several confidence factors are weak"
	default:
		return "The underlying data is insufficient for a dependable estimate; treat this value as indicative only"
	}
}

func reliabilityDescription(score float64) string {
	switch {
	case score >= 85:
		return "The comparable data strongly supports this price estimate"
	case score >= 70:
		return "The comparable data supports this price estimate well"
	case score >= 55:
		return "The comparable data moderately supports this price estimate"
	case score >= 40:
		return "The comparable data provides limited support for this price estimate"
	default:
		return "The comparable data provides very little support for this price estimate"
	}
}
