package services

// PublishTransition reports whether a post write moved the post into the
// published state. previous is the published flag before the write, or nil
// when the write created the post.
func PublishTransition(previous *bool, current bool) bool {
	if !current {
		return false
	}
	return previous == nil || !*previous
}
