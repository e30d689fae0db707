// Package predict estimates WiFi signal strength and quality.
//
// Two estimators are provided. The basic path derives a quality grade and
// advice from a measured signal strength. The location path fits regression
// models (ordinary least squares and k-nearest-neighbor) to surveyed
// samples and predicts RSSI at arbitrary floor-plan coordinates; Train
// keeps whichever model scores the better R2 on a holdout split, and the
// result round-trips through a JSON model file.
package predict
