package proctor

// PhoneFlag checks whether any phone center lies closer than ratio*personHeight to the person center.
func PhoneFlag(person Rectangle, phones []Rectangle, ratio float64) bool {
	center := person.Center()
	threshold := person.Height * ratio
	for _, phone := range phones {
		if euclideanDistance(center, phone.Center()) < threshold {
			return true
		}
	}
	return false
}
