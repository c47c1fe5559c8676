package roles

// CanAccess decides whether a user holding role may track channel. It is the
// single authority consulted before a channel is added to a tracked set.
//
// Rules, in order: no role denies; a wildcard or literal match in the role's
// access set permits; otherwise the role's rank must meet the channel's
// required level. Equal rank grants access.
func CanAccess(role, channel string) bool {
	if role == "" {
		return false
	}

	if r, ok := engineeringRoles[role]; ok {
		for _, c := range r.CanAccess {
			if c == Wildcard || c == channel {
				return true
			}
		}
	}

	return HierarchyRank(role) >= ChannelAccessLevel(channel)
}
