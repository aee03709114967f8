// Package proctor keeps stable identities of persons across a video stream
// whose upstream tracker ids churn, and flags behaviour worth a proctor's attention:
// sustained gaze deviation from the identity's own baseline and a phone held close.
package proctor
