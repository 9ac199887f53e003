// Package attune estimates a person's affective state from text and an
// optional face signal, fuses the two estimates, and recommends tasks that
// suit the result.
//
// Quick start:
//
//	a, err := attune.New(attune.WithModelDir("models/text"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	res, _ := a.Analyze("the deadline moved up again", &attune.Face{
//	    Dominant: "fear",
//	    Scores:   map[string]float64{"fear": 62},
//	})
//	fmt.Println(res.Final.Label, res.Recommendation.Tasks)
//
// An Attune is safe for concurrent use. Create once, reuse across requests.
package attune
