package rediskey

import "fmt"

// Key prefixes shared by the cache and the rate limiter.
const (
	EventPrefix            = "promotion:event"
	RewardPrefix           = "promotion:reward"
	EventRewardPrefix      = "promotion:event-reward"
	RewardRequestRatePrefx = "promotion:ratelimit:reward-request"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// Event returns "promotion:event:{eventID}"
func Event(eventID string) string {
	return NamespaceKey(EventPrefix, eventID)
}

// Reward returns "promotion:reward:{rewardID}"
func Reward(rewardID string) string {
	return NamespaceKey(RewardPrefix, rewardID)
}

// EventReward returns "promotion:event-reward:{eventRewardID}"
func EventReward(eventRewardID string) string {
	return NamespaceKey(EventRewardPrefix, eventRewardID)
}

// RewardRequestRate returns "promotion:ratelimit:reward-request:{userID}"
func RewardRequestRate(userID string) string {
	return NamespaceKey(RewardRequestRatePrefx, userID)
}
