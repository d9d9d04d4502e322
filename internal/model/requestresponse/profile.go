package requestresponse

import (
	"time"

	"storage-manager/internal/model"
)

// ProfileResponse : профиль пользователя
type ProfileResponse struct {
	Data struct {
		UserID    string `json:"user_id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		HasAvatar bool   `json:"has_avatar" example:"true"`
		Bio       string `json:"bio" example:"люблю порядок в файлах"`
		Phone     string `json:"phone" example:"+7 900 000-00-00"`
		Location  string `json:"location" example:"Москва"`
		UpdatedAt string `json:"updated" example:"2025-08-23T12:34:56Z"`
	} `json:"data"`
}

func ProfileResponseFromModel(profile *model.UserProfile) ProfileResponse {
	var resp ProfileResponse
	resp.Data.UserID = profile.UserID
	resp.Data.HasAvatar = profile.AvatarRef != ""
	resp.Data.Bio = profile.Bio
	resp.Data.Phone = profile.Phone
	resp.Data.Location = profile.Location
	resp.Data.UpdatedAt = profile.UpdatedAt.Format(time.RFC3339)
	return resp
}

// UpdateProfileRequest : отсутствующие поля не меняются
type UpdateProfileRequest struct {
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500" example:"люблю порядок в файлах"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20" example:"+7 900 000-00-00"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=100" example:"Москва"`
}

// StatsResponse : использование хранилища
type StatsResponse struct {
	Data struct {
		UsedBytes       int64   `json:"used_bytes" example:"1048576"`
		Used            string  `json:"used" example:"1.0 MB"`
		QuotaBytes      int64   `json:"quota_bytes" example:"10737418240"`
		Quota           string  `json:"quota" example:"10.0 GB"`
		UsagePercentage float64 `json:"usage_percentage" example:"0.01"`
		ActiveUsers     int     `json:"active_users" example:"9"`
		FileCount       int     `json:"file_count" example:"42"`
	} `json:"data"`
}

func StatsResponseFromModel(stats *model.UsageStats) StatsResponse {
	var resp StatsResponse
	resp.Data.UsedBytes = stats.UsedBytes
	resp.Data.Used = model.HumanSize(stats.UsedBytes)
	resp.Data.QuotaBytes = stats.QuotaBytes
	resp.Data.Quota = model.HumanSize(stats.QuotaBytes)
	resp.Data.UsagePercentage = stats.UsagePercentage
	resp.Data.ActiveUsers = stats.ActiveUsers
	resp.Data.FileCount = stats.FileCount
	return resp
}
