package searchagent

import "market-survey-portal/internal/models"

// OpportunityScore rates a candidate 0-100. Base 50, adjusted by how the
// property surfaced, its occupancy, time on market and cap rate.
func OpportunityScore(oppType models.OpportunityType, occupancy, capRate *float64, daysOnMarket *int) int {
	score := 50

	switch oppType {
	case models.OpportunityDistressedSale:
		score += 20
	case models.OpportunityUnderperforming:
		score += 15
	case models.OpportunityNewListing:
		score += 10
	}

	if occupancy != nil {
		switch {
		case *occupancy < 70:
			score += 15
		case *occupancy < 85:
			score += 10
		case *occupancy > 95:
			score -= 5
		}
	}

	if daysOnMarket != nil {
		switch {
		case *daysOnMarket > 90:
			score += 10
		case *daysOnMarket < 7:
			score += 5
		}
	}

	if capRate != nil {
		switch {
		case *capRate > 7:
			score += 10
		case *capRate > 6:
			score += 5
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// UrgencyFor buckets a candidate by how fast the opportunity is likely to
// move: deep distress or long exposure means immediate attention.
func UrgencyFor(score int, occupancy *float64, daysOnMarket *int) models.UrgencyLevel {
	if score >= 80 ||
		(occupancy != nil && *occupancy < 70) ||
		(daysOnMarket != nil && *daysOnMarket > 90) {
		return models.UrgencyImmediate
	}
	if score >= 60 || (daysOnMarket != nil && *daysOnMarket > 30) {
		return models.UrgencyDeveloping
	}
	return models.UrgencyFuture
}
