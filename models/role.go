package models

type Role struct {
	ID          string   `json:"id" bson:"id"`
	Name        string   `json:"name" bson:"name"`
	Permissions []string `json:"permissions" bson:"permissions"`
	IsDefault   bool     `json:"isDefault" bson:"isDefault"`
	IsEmployee  bool     `json:"isEmployee" bson:"isEmployee"`
	Protected   bool     `json:"protected" bson:"protected"`
}
