package common

import "fmt"

func RedisKeyProfile(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

func RedisKeyCompletedTasks(userID string) string {
	return fmt.Sprintf("completedtasks:%s", userID)
}

func RedisKeyDailyFollows(userID string) string {
	return fmt.Sprintf("dailyfollows:%s", userID)
}

func RedisKeyLeaderboard() string {
	return "leaderboard"
}
