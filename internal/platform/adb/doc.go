// Package adb provides Android device support by shelling out to the adb
// binary: uiautomator for the element tree, input for gestures and text, am
// and monkey for intents and launches, svc for radios.
package adb
