// Package essentia derives genres from the high-level descriptors of the
// Essentia music extractor.
package essentia

import "github.com/ademuri/autogenre/internal/genrelist"

// See https://essentia.upf.edu/svm_models/accuracies_v2.1_beta1.html
var rosamericaGenres = map[string]string{
	"cla": "classical",
	"dan": "dance",
	"hip": "hip hop",
	"jaz": "jazz",
	"pop": "pop",
	"rhy": "rhythm and blues",
	"roc": "rock",
	"spe": "speech",
}

var electronicGenres = map[string]string{
	"ambient": "ambient",
	"dnb":     "drum and bass",
	"house":   "house",
	"techno":  "techno",
	"trance":  "trance",
}

// Rosamerica classes that are often produced electronically.
var electronicProne = map[string]bool{
	"rhy": true,
	"pop": true,
	"hip": true,
}

// Thresholds are the probability cut points used by Classify.
type Thresholds struct {
	// ElectronicStrong replaces "dance" with the electronic sub-genre.
	ElectronicStrong float64
	// RosamericaStrong is the rosamerica confidence below which a credible
	// electronic signal takes the primary slot.
	RosamericaStrong float64
	// ElectronicPrepend is the electronic confidence required to prepend
	// "electronic" to a weak rosamerica result.
	ElectronicPrepend float64
	// ElectronicAppend is the electronic confidence required to append
	// "electronic" to electronic-prone genres.
	ElectronicAppend float64
}

// DefaultThresholds are used when none are configured.
var DefaultThresholds = Thresholds{
	ElectronicStrong:  0.7,
	RosamericaStrong:  0.6,
	ElectronicPrepend: 0.9,
	ElectronicAppend:  0.8,
}

// Prediction is the output of the rosamerica and electronic genre models.
type Prediction struct {
	Rosamerica            string
	RosamericaProbability float64
	Electronic            string
	ElectronicProbability float64
}

// Classify maps a prediction to a genre list. The list is empty when the
// rosamerica class is unknown and no electronic rule applies.
func Classify(p Prediction, th Thresholds) genrelist.List {
	genre := rosamericaGenres[p.Rosamerica]
	genres := genrelist.New(genre)

	if genre == "dance" {
		if p.ElectronicProbability > th.ElectronicStrong {
			genres = genrelist.New(electronicGenres[p.Electronic])
		}
	} else if p.RosamericaProbability < th.RosamericaStrong && p.ElectronicProbability > th.ElectronicPrepend {
		genres = genrelist.New("electronic", genre, electronicGenres[p.Electronic])
	}

	if p.ElectronicProbability > th.ElectronicAppend {
		if electronicProne[p.Rosamerica] {
			genres = genres.Append("electronic")
		} else if len(genres) == 1 && genres[0] == "dance" {
			genres = genrelist.New("electronic")
		}
	}

	return genres
}
