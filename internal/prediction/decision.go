package prediction

// Coach calls. Downstream overlays match on these strings verbatim.
const (
	CallWardRiver    = "WARD RIVER → FREEZE"
	CallTPMid        = "TP MID → 4V3 DRAKE"
	CallDragonVision = "DRAGON VISION → GROUP"
	CallFarmSafe     = "FARM SAFE → SPLIT T2"
)

const (
	gankThreshold   = 0.75
	rotateThreshold = 0.70
	dragonWindow    = 30.0
	unknownTimer    = 999.0
)

// Decide picks the coach call for p. Rules are checked in order and the
// first match wins.
func Decide(p Prediction) string {
	if p.GankProbability > gankThreshold {
		return CallWardRiver
	}
	if p.RotateProbability > rotateThreshold {
		return CallTPMid
	}
	dragon, ok := p.ObjectiveTimers[ObjectiveDragon]
	if !ok {
		dragon = unknownTimer
	}
	if dragon < dragonWindow {
		return CallDragonVision
	}
	return CallFarmSafe
}
