package handlers

import (
	"context"
	"sort"
	"time"

	"gotalk/server/internal/database"
	"gotalk/server/internal/middleware"
	"gotalk/server/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

const profilePageSize = 20

// UpdateProfileRequest represents profile self-update request body
type UpdateProfileRequest struct {
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender      string  `json:"gender" validate:"omitempty,oneof=m f n"`
	Phone       *string `json:"phone" validate:"omitempty,phone"`
	CountryID   *int64  `json:"countryId"`
	TagIDs      []int64 `json:"tagIds"`
	NativeIn    []int64 `json:"nativeIn"`
}

func ageGroup(age int) string {
	switch {
	case age <= 25:
		return "<25"
	case age <= 35:
		return "25-35"
	case age <= 45:
		return "35-45"
	case age <= 60:
		return "45-60"
	default:
		return "60+"
	}
}

// ListProfiles returns one page of profile cards plus the facet data the
// browse page filters on (unique languages, tags, genders, age groups).
func ListProfiles(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	rows, err := database.Pool.Query(context.Background(), `
		SELECT p.id, p.date_of_birth, p.gender, u.first_name, u.last_name
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY u.last_login DESC
		LIMIT $1 OFFSET $2
	`, profilePageSize, (page-1)*profilePageSize)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	var cards []models.ProfileCard
	var ids []int64
	for rows.Next() {
		var p models.Profile
		var firstName, lastName string
		if err := rows.Scan(&p.ID, &p.DateOfBirth, &p.Gender, &firstName, &lastName); err != nil {
			continue
		}
		cards = append(cards, models.ProfileCard{
			ID:     p.ID,
			Name:   firstName + " " + lastName,
			Age:    p.Age(),
			Gender: p.GenderLabel(),
			Study:  []string{},
			Tags:   []string{},
		})
		ids = append(ids, p.ID)
	}

	// Attach studied languages and tags per card
	study, err := namesByProfile(ids, `
		SELECT pl.profile_id, l.name
		FROM profile_languages pl
		JOIN languages l ON l.id = pl.language_id
		WHERE pl.profile_id = ANY($1)
	`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	tags, err := namesByProfile(ids, `
		SELECT pt.profile_id, t.tag
		FROM profile_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.profile_id = ANY($1)
	`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	for i := range cards {
		if s, ok := study[cards[i].ID]; ok {
			cards[i].Study = s
		}
		if t, ok := tags[cards[i].ID]; ok {
			cards[i].Tags = t
		}
	}

	// Facet aggregates over the page
	languageSet := map[string]bool{}
	tagSet := map[string]bool{}
	genderSet := map[string]bool{}
	groupSet := map[string]bool{}
	var ages []int
	for _, card := range cards {
		for _, s := range card.Study {
			languageSet[s] = true
		}
		for _, t := range card.Tags {
			tagSet[t] = true
		}
		genderSet[card.Gender] = true
		if card.Age != nil {
			ages = append(ages, *card.Age)
			groupSet[ageGroup(*card.Age)] = true
		}
	}
	sort.Ints(ages)

	if cards == nil {
		cards = []models.ProfileCard{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"profiles": cards,
			"page":     page,
			"pageSize": profilePageSize,
			"facets": fiber.Map{
				"languages": setKeys(languageSet),
				"tags":      setKeys(tagSet),
				"genders":   setKeys(genderSet),
				"ages":      ages,
				"ageGroups": setKeys(groupSet),
			},
		},
	})
}

func setKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func namesByProfile(ids []int64, query string) (map[int64][]string, error) {
	out := map[int64][]string{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := database.Pool.Query(context.Background(), query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			continue
		}
		out[id] = append(out[id], name)
	}
	return out, rows.Err()
}

func loadProfileDetail(ctx context.Context, profileID int64) (*models.ProfileDetail, error) {
	var detail models.ProfileDetail
	var p models.Profile
	var country models.Country
	var countryIDRef *int64
	var countryAbbr, countryName *string

	err := database.Pool.QueryRow(ctx, `
		SELECT p.id, p.date_of_birth, p.gender, p.phone, p.avatar, p.country_id,
		       u.id, u.email, u.first_name, u.last_name, u.last_login, u.created_at,
		       c.id, c.abbreviation, c.name
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN countries c ON c.id = p.country_id
		WHERE p.id = $1
	`, profileID).Scan(&p.ID, &p.DateOfBirth, &p.Gender, &p.Phone, &p.Avatar, &p.CountryID,
		&detail.User.ID, &detail.User.Email, &detail.User.FirstName, &detail.User.LastName,
		&detail.User.LastLogin, &detail.User.CreatedAt,
		&countryIDRef, &countryAbbr, &countryName)
	if err != nil {
		return nil, err
	}

	detail.ID = p.ID
	detail.Age = p.Age()
	detail.Gender = p.GenderLabel()
	detail.Phone = p.Phone
	detail.Avatar = p.Avatar
	if countryIDRef != nil && countryAbbr != nil && countryName != nil {
		country = models.Country{ID: *countryIDRef, Abbreviation: *countryAbbr, Name: *countryName}
		detail.Country = &country
	}

	detail.NativeIn = []models.Language{}
	rows, err := database.Pool.Query(ctx, `
		SELECT l.id, l.name FROM profile_native pn
		JOIN languages l ON l.id = pn.language_id
		WHERE pn.profile_id = $1 ORDER BY l.name
	`, profileID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var l models.Language
		if err := rows.Scan(&l.ID, &l.Name); err == nil {
			detail.NativeIn = append(detail.NativeIn, l)
		}
	}
	rows.Close()

	detail.Study = []models.LanguageLevel{}
	rows, err = database.Pool.Query(ctx, `
		SELECT pl.profile_id, pl.language_id, l.name, pl.level FROM profile_languages pl
		JOIN languages l ON l.id = pl.language_id
		WHERE pl.profile_id = $1 ORDER BY l.name
	`, profileID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ll models.LanguageLevel
		if err := rows.Scan(&ll.ProfileID, &ll.LanguageID, &ll.Language, &ll.Level); err == nil {
			detail.Study = append(detail.Study, ll)
		}
	}
	rows.Close()

	detail.Tags = []models.Tag{}
	rows, err = database.Pool.Query(ctx, `
		SELECT t.id, t.tag, t.tag_area_id FROM profile_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.profile_id = $1 ORDER BY t.tag
	`, profileID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Tag, &t.TagAreaID); err == nil {
			detail.Tags = append(detail.Tags, t)
		}
	}
	rows.Close()

	return &detail, nil
}

// GetProfile returns one profile with the partner state relative to the
// caller and, for authenticated callers, records the visit and returns
// their recently viewed profiles.
func GetProfile(c *fiber.Ctx) error {
	profileID, err := c.ParamsInt("profileId")
	if err != nil || profileID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid profile ID",
		})
	}

	ctx := context.Background()
	detail, err := loadProfileDetail(ctx, int64(profileID))
	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Profile not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	data := fiber.Map{
		"profile":   detail,
		"onlineNow": middleware.OnlineNowIDs(c),
	}

	viewerProfileID := middleware.GetProfileID(c)
	if viewerProfileID != 0 && viewerProfileID != detail.ID {
		// Has the viewed profile sent the caller a pending request?
		isRequested, err := partners.IsPending(ctx, detail.ID, viewerProfileID)
		if err == nil {
			data["isRequested"] = isRequested
		}
		if isPartner, err := partners.IsPartner(ctx, viewerProfileID, detail.ID); err == nil {
			data["isPartner"] = isPartner
		}

		// Record the visit and surface the viewer's recent history
		viewed := visits.Visit(ctx, middleware.GetUserID(c), detail.ID)
		cards, err := profileCardsByIDs(ctx, viewed)
		if err == nil {
			data["viewedProfiles"] = cards
		}
	}

	if viewerProfileID != 0 && viewerProfileID == detail.ID {
		// Owner view: incoming requests and the partner list
		if pending, err := partners.PendingFor(ctx, detail.ID); err == nil {
			data["followerRequests"] = pending
		}
		if partnerIDs, err := partners.Partners(ctx, detail.ID); err == nil {
			cards, err := profileCardsByIDs(ctx, partnerIDs)
			if err == nil {
				data["partners"] = cards
			}
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// profileCardsByIDs resolves profile ids to cards, preserving the order
// of ids.
func profileCardsByIDs(ctx context.Context, ids []int64) ([]models.ProfileCard, error) {
	cards := []models.ProfileCard{}
	if len(ids) == 0 {
		return cards, nil
	}

	rows, err := database.Pool.Query(ctx, `
		SELECT p.id, p.date_of_birth, p.gender, u.first_name, u.last_name
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[int64]models.ProfileCard{}
	for rows.Next() {
		var p models.Profile
		var firstName, lastName string
		if err := rows.Scan(&p.ID, &p.DateOfBirth, &p.Gender, &firstName, &lastName); err != nil {
			continue
		}
		byID[p.ID] = models.ProfileCard{
			ID:     p.ID,
			Name:   firstName + " " + lastName,
			Age:    p.Age(),
			Gender: p.GenderLabel(),
			Study:  []string{},
			Tags:   []string{},
		}
	}

	for _, id := range ids {
		if card, ok := byID[id]; ok {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// UpdateProfile updates the caller's own profile
func UpdateProfile(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	var dateOfBirth *time.Time
	if req.DateOfBirth != nil {
		parsed, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid date of birth",
			})
		}
		dateOfBirth = &parsed
	}

	gender := req.Gender
	if gender == "" {
		gender = models.GenderUnspecified
	}

	ctx := context.Background()
	tx, err := database.Pool.Begin(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE profiles
		SET date_of_birth = $1, gender = $2, phone = $3, country_id = $4, updated_at = $5
		WHERE id = $6
	`, dateOfBirth, gender, req.Phone, req.CountryID, time.Now(), profileID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update profile",
		})
	}

	if _, err := tx.Exec(ctx, "DELETE FROM profile_tags WHERE profile_id = $1", profileID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update tags",
		})
	}
	for _, tagID := range req.TagIDs {
		if _, err := tx.Exec(ctx, "INSERT INTO profile_tags (profile_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", profileID, tagID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to update tags",
			})
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM profile_native WHERE profile_id = $1", profileID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update native languages",
		})
	}
	for _, languageID := range req.NativeIn {
		if _, err := tx.Exec(ctx, "INSERT INTO profile_native (profile_id, language_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", profileID, languageID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to update native languages",
			})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	detail, err := loadProfileDetail(ctx, profileID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    detail,
	})
}
