package models

import (
	"time"
)

// Follow 关注关系：User 关注 Author
type Follow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_follow_pair;check:chk_follow_not_self,user_id <> author_id" json:"user_id"`
	User     User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID uint `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"author_id"`
	Author   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	// 复合唯一键 idx_follow_pair = (user_id, author_id)，避免重复关注
	CreatedAt time.Time `json:"created_at"`
}
