package main

import (
	"fmt"
	"log"
	"time"

	"helpmarket/internal/config"
	"helpmarket/internal/database"
	"helpmarket/internal/domain/auth"
	"helpmarket/internal/domain/category"
	"helpmarket/internal/domain/conversation"
	"helpmarket/internal/domain/message"
	"helpmarket/internal/domain/notification"
	"helpmarket/internal/domain/offer"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&auth.User{},
		&category.Category{},
		&offer.Offer{},
		&conversation.Conversation{},
		&message.Message{},
		&notification.Notification{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (children first)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM messages")
	db.Exec("DELETE FROM conversations")
	db.Exec("DELETE FROM offers")
	db.Exec("DELETE FROM categories")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	users := []auth.User{}
	emails := []string{"alice@example.com", "bob@example.com", "carol@example.com"}
	names := []string{"Alice", "Bob", "Carol"}
	for i, email := range emails {
		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		u := auth.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         names[i],
		}
		db.Create(&u)
		users = append(users, u)
		log.Printf("User created: %s / password123", email)
	}

	// ================== CATEGORIES ==================
	log.Println("Creating categories...")

	categories := []category.Category{}
	catNames := []struct{ name, slug, icon string }{
		{"Programming", "programming", "code"},
		{"Math", "math", "calculator"},
		{"Writing", "writing", "pen"},
		{"Languages", "languages", "globe"},
		{"Design", "design", "palette"},
	}
	for i, cn := range catNames {
		cat := category.Category{
			ID:        uuid.New().String(),
			Name:      cn.name,
			Slug:      cn.slug,
			Icon:      cn.icon,
			SortOrder: i,
		}
		db.Create(&cat)
		categories = append(categories, cat)
	}

	// ================== OFFERS ==================
	log.Println("Creating offers...")

	offers := []offer.Offer{}
	samples := []struct {
		poster      int
		cat         int
		typ         offer.Type
		title       string
		description string
		price       float64
	}{
		{0, 0, offer.TypeHelpWanted, "Need help debugging a Go service", "My HTTP handlers deadlock under load, looking for someone to pair for an hour.", 25},
		{0, 1, offer.TypeHelpWanted, "Calculus exam prep", "Two sessions before Friday covering integrals.", 15},
		{1, 0, offer.TypeOfferingHelp, "Code reviews for student projects", "Happy to review Go and Python projects, free for classmates.", 0},
		{2, 2, offer.TypeOfferingHelp, "Essay proofreading", "Fast turnaround on essays up to 3000 words.", 10},
	}
	for _, s := range samples {
		o := offer.Offer{
			ID:          uuid.New().String(),
			PosterID:    users[s.poster].ID,
			CategoryID:  categories[s.cat].ID,
			Type:        s.typ,
			Title:       s.title,
			Description: s.description,
			Price:       s.price,
			Status:      offer.StatusOpen,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		db.Create(&o)
		offers = append(offers, o)
	}

	// ================== CONVERSATIONS ==================
	log.Println("Creating a sample conversation...")

	conv := conversation.Conversation{
		ID:               uuid.New().String(),
		OfferID:          offers[0].ID,
		PosterID:         offers[0].PosterID,
		InterestedUserID: users[1].ID,
		IsActive:         true,
		LastMessageAt:    time.Now(),
		CreatedAt:        time.Now(),
	}
	db.Create(&conv)

	texts := []struct {
		sender  int
		content string
	}{
		{1, "Hi! I can take a look at the deadlock today."},
		{0, "Great, it reproduces with 50 concurrent requests."},
	}
	for _, t := range texts {
		m := message.Message{
			ID:             uuid.New().String(),
			ConversationID: conv.ID,
			SenderID:       users[t.sender].ID,
			MessageType:    message.KindText,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		m.Content.String = t.content
		m.Content.Valid = true
		db.Create(&m)
	}

	fmt.Println("Seed complete.")
}
