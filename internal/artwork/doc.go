// Package artwork picks the best poster or background for a series or season
// from cached catalog candidates.
//
// Selection is resolution first: language only breaks ties between images of
// equal size, and non-preferred-language art is used when nothing else exists.
package artwork
