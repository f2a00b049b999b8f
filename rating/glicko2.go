package rating

import (
	"math"
)

const (
	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06
	DefaultTau        = 0.5
	DefaultEpsilon    = 1e-6

	// glickoScale converts between the display scale and the Glicko-2 scale.
	glickoScale = 173.7178

	maxIterations = 100
)

// Rating is a player's Glicko-2 state on the display scale.
type Rating struct {
	Rating     float64 `json:"rating"`
	Deviation  float64 `json:"ratingDeviation"`
	Volatility float64 `json:"volatility"`
}

func Default() Rating {
	return Rating{
		Rating:     DefaultRating,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
	}
}

// Result is one game of a rating period: the opponent's rating before the
// period and the score, 1 for a win, 0.5 for a draw and 0 for a loss.
type Result struct {
	Opponent Rating
	Score    float64
}

type Config struct {
	// Tau constrains the change in volatility.
	Tau float64 `mapstructure:"tau"`
	// Epsilon is the convergence tolerance of the volatility iteration.
	Epsilon float64 `mapstructure:"epsilon"`
}

func DefaultConfig() Config {
	return Config{
		Tau:     DefaultTau,
		Epsilon: DefaultEpsilon,
	}
}

// Update rates one period. Without results only the deviation grows.
func Update(r Rating, results []Result, cfg Config) Rating {
	if cfg.Tau <= 0 {
		cfg.Tau = DefaultTau
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultEpsilon
	}

	mu := (r.Rating - DefaultRating) / glickoScale
	phi := r.Deviation / glickoScale
	sigma := r.Volatility

	if len(results) == 0 {
		return Rating{
			Rating:     r.Rating,
			Deviation:  math.Sqrt(phi*phi+sigma*sigma) * glickoScale,
			Volatility: sigma,
		}
	}

	var vInv, sum float64
	for _, res := range results {
		muJ := (res.Opponent.Rating - DefaultRating) / glickoScale
		phiJ := res.Opponent.Deviation / glickoScale
		gJ := g(phiJ)
		eJ := expected(mu, muJ, gJ)
		vInv += gJ * gJ * eJ * (1 - eJ)
		sum += gJ * (res.Score - eJ)
	}
	v := 1 / vInv
	delta := v * sum

	sigmaPrime := volatility(phi, sigma, v, delta, cfg)
	phiStar := math.Sqrt(phi*phi + sigmaPrime*sigmaPrime)
	phiPrime := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	muPrime := mu + phiPrime*phiPrime*sum

	return Rating{
		Rating:     muPrime*glickoScale + DefaultRating,
		Deviation:  phiPrime * glickoScale,
		Volatility: sigmaPrime,
	}
}

func g(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

func expected(mu, muJ, gJ float64) float64 {
	return 1 / (1 + math.Exp(-gJ*(mu-muJ)))
}

// volatility solves for the new volatility with the Illinois variant of
// regula falsi.
func volatility(phi, sigma, v, delta float64, cfg Config) float64 {
	tau := cfg.Tau
	a := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		d := phi*phi + v + ex
		return ex*(delta*delta-phi*phi-v-ex)/(2*d*d) - (x-a)/(tau*tau)
	}

	A := a
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a-k*tau) < 0 {
			k++
		}
		B = a - k*tau
	}

	fA, fB := f(A), f(B)
	for i := 0; math.Abs(B-A) > cfg.Epsilon && i < maxIterations; i++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(A / 2)
}
