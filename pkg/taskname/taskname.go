package taskname

const (
	// Reward request callbacks, enqueued by the game authority.
	RewardRequestProcess = "event.reward-request.process"
	RewardRequestResult  = "event.reward-request.result"

	// Default grant command consumed by the game authority.
	GameRewardProcess = "game.reward.process"

	// Default user-field query command.
	GameUserActionGet = "game.user-action.get"
)
