package service

import "errors"

// 投票引擎的业务错误。各校验边界用显式错误值返回结果，
// API 层通过 errors.Is 映射为对应的 HTTP 状态码。
var (
	// ErrInvalidVote 胜者与败者是同一个项目
	ErrInvalidVote = errors.New("projects must be different")
	// ErrDuplicateVote 同一用户对同一有序项目对重复投票
	ErrDuplicateVote = errors.New("you already voted on this matchup")
	// ErrSelfRating 给自己的项目打分
	ErrSelfRating = errors.New("cannot rate your own project")
	// ErrInvalidScore 任一维度分数超出 1-5
	ErrInvalidScore = errors.New("all ratings must be between 1 and 5")
	// ErrInsufficientCandidates 可参与配对的项目不足两个
	ErrInsufficientCandidates = errors.New("not enough projects available")
	// ErrProjectNotFound 项目不存在
	ErrProjectNotFound = errors.New("project not found")
)
