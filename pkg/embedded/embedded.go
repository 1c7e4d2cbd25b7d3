package embedded

import (
	_ "embed"
)

// DemoScript is the bundled demo song in note-script form
//
//go:embed songs/demo.txt
var DemoScript []byte

// DemoBPM is the tempo the demo song was written for
const DemoBPM = 200

// DemoNoiseSections is the demo's ambience: a 0.1 s noise burst, then 30 s of silence
var DemoNoiseSections = []float64{0.1, 30}
