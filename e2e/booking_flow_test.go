package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	d, ok := decodeBody(t, rec)["data"].(map[string]interface{})
	require.True(t, ok, "data がオブジェクトではありません: %s", rec.Body.String())
	return d
}

// registerAndLogin はユーザーを登録してアクセストークンを返す
func registerAndLogin(t *testing.T, s *TestServer, email string) (accessToken, refreshToken string) {
	t.Helper()
	rec := s.Request("POST", "/api/v1/auth/register", map[string]interface{}{
		"email":      email,
		"password":   "password-123",
		"first_name": "太郎",
		"last_name":  "山田",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.Request("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    email,
		"password": "password-123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	return data["access_token"].(string), data["refresh_token"].(string)
}

// registerAdmin は登録後にDB上で管理者へ昇格させ、管理者トークンを返す
func registerAdmin(t *testing.T, s *TestServer, email string) string {
	t.Helper()
	rec := s.Request("POST", "/api/v1/auth/register", map[string]interface{}{
		"email":      email,
		"password":   "password-123",
		"first_name": "花子",
		"last_name":  "管理",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	_, err := testDB.Exec("UPDATE users SET role = 'admin' WHERE email = $1", email)
	require.NoError(t, err)

	rec = s.Request("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    email,
		"password": "password-123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeData(t, rec)["access_token"].(string)
}

// setupFleet は車種・拠点・車両を1台ずつ登録する
func setupFleet(t *testing.T, s *TestServer, adminToken string) (locationID, vehicleID string) {
	t.Helper()
	rec := s.Request("POST", "/api/v1/specifications", map[string]interface{}{
		"make":         "Toyota",
		"model":        "Corolla",
		"year":         2022,
		"category":     "sedan",
		"seats":        5,
		"transmission": "automatic",
		"fuel_type":    "hybrid",
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	specID := decodeData(t, rec)["id"].(string)

	rec = s.Request("POST", "/api/v1/locations", map[string]interface{}{
		"name": "渋谷営業所",
		"city": "東京",
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	locationID = decodeData(t, rec)["id"].(string)

	rec = s.Request("POST", "/api/v1/vehicles", map[string]interface{}{
		"specification_id": specID,
		"location_id":      locationID,
		"license_plate":    "品川 300 あ 12-34",
		"rental_rate":      150.0,
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	vehicleID = decodeData(t, rec)["id"].(string)
	return locationID, vehicleID
}

func vehicleStatus(t *testing.T, s *TestServer, vehicleID string) string {
	t.Helper()
	rec := s.Request("GET", "/api/v1/vehicles/"+vehicleID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeData(t, rec)["status"].(string)
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request("GET", "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

// TestE2E_CompleteBookingJourney は予約から返却までの完全なジャーニーをテスト
func TestE2E_CompleteBookingJourney(t *testing.T) {
	server := getTestServer(t)

	adminToken := registerAdmin(t, server, "admin@example.com")
	userToken, _ := registerAndLogin(t, server, "taro@example.com")
	locationID, vehicleID := setupFleet(t, server, adminToken)

	start := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Hour)
	end := start.Add(4 * 24 * time.Hour)

	var bookingID, paymentID string

	// 1. 空き台数確認
	t.Run("空き台数確認", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/vehicles/available-count?location_id=%s", locationID)
		rec := server.Request("GET", path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), decodeData(t, rec)["available"])
	})

	// 2. 予約作成
	t.Run("予約作成", func(t *testing.T) {
		body := map[string]interface{}{
			"vehicle_id":   vehicleID,
			"location_id":  locationID,
			"booking_date": start.Format(time.RFC3339),
			"return_date":  end.Format(time.RFC3339),
		}
		rec := server.Request("POST", "/api/v1/bookings", body, userToken)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		data := decodeData(t, rec)
		bookingID = data["id"].(string)
		assert.Equal(t, "pending", data["status"])
		assert.Equal(t, float64(600), data["total_amount"])
	})

	// 3. 管理者が予約確定
	t.Run("予約確定で車両がreservedになる", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%s/confirm", bookingID)
		rec := server.Request("POST", path, nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "confirmed", decodeData(t, rec)["status"])

		assert.Equal(t, "reserved", vehicleStatus(t, server, vehicleID))
	})

	// 4. 空き台数が減っていることを確認
	t.Run("空き台数減少確認", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/vehicles/available-count?location_id=%s", locationID)
		rec := server.Request("GET", path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), decodeData(t, rec)["available"])
	})

	// 5. 貸出開始
	t.Run("貸出開始で車両がrentedになる", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%s/activate", bookingID)
		rec := server.Request("POST", path, nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "active", decodeData(t, rec)["status"])

		assert.Equal(t, "rented", vehicleStatus(t, server, vehicleID))
	})

	// 6. 支払い
	t.Run("支払い作成と完了", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/payments", map[string]interface{}{
			"booking_id": bookingID,
			"amount":     600.0,
			"method":     "card",
		}, userToken)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		data := decodeData(t, rec)
		paymentID = data["id"].(string)
		assert.Equal(t, "pending", data["status"])

		path := fmt.Sprintf("/api/v1/payments/%s/status", paymentID)
		rec = server.Request("PUT", path, map[string]interface{}{
			"status": "completed",
		}, adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "completed", decodeData(t, rec)["status"])
	})

	// 7. 支払い一覧
	t.Run("予約の支払い一覧", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%s/payments", bookingID)
		rec := server.Request("GET", path, nil, userToken)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeData(t, rec)
		payments, ok := data["payments"].([]interface{})
		require.True(t, ok)
		assert.Len(t, payments, 1)
		assert.Equal(t, float64(0), data["outstanding_balance"])
	})

	// 8. 返却
	t.Run("返却で車両がavailableに戻る", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%s/complete", bookingID)
		rec := server.Request("POST", path, nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "completed", decodeData(t, rec)["status"])

		assert.Equal(t, "available", vehicleStatus(t, server, vehicleID))
	})
}

// TestE2E_BookingConflict は同一車両・同一期間の二重予約をテスト
func TestE2E_BookingConflict(t *testing.T) {
	server := getTestServer(t)

	adminToken := registerAdmin(t, server, "admin@example.com")
	tokenA, _ := registerAndLogin(t, server, "user-a@example.com")
	tokenB, _ := registerAndLogin(t, server, "user-b@example.com")
	locationID, vehicleID := setupFleet(t, server, adminToken)

	start := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * 24 * time.Hour)

	body := map[string]interface{}{
		"vehicle_id":   vehicleID,
		"location_id":  locationID,
		"booking_date": start.Format(time.RFC3339),
		"return_date":  end.Format(time.RFC3339),
	}

	t.Run("ユーザーAが予約成功", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/bookings", body, tokenA)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("ユーザーBが同じ期間で予約しようとして競合", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/bookings", body, tokenB)
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		assert.Equal(t, "conflict", decodeBody(t, rec)["error"])
	})

	t.Run("ユーザーBが期間をずらせば予約できる", func(t *testing.T) {
		later := map[string]interface{}{
			"vehicle_id":   vehicleID,
			"location_id":  locationID,
			"booking_date": end.Add(24 * time.Hour).Format(time.RFC3339),
			"return_date":  end.Add(3 * 24 * time.Hour).Format(time.RFC3339),
		}
		rec := server.Request("POST", "/api/v1/bookings", later, tokenB)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})
}

// TestE2E_CancelAndRebook はキャンセル後の再予約をテスト
func TestE2E_CancelAndRebook(t *testing.T) {
	server := getTestServer(t)

	adminToken := registerAdmin(t, server, "admin@example.com")
	tokenA, _ := registerAndLogin(t, server, "user-a@example.com")
	tokenB, _ := registerAndLogin(t, server, "user-b@example.com")
	locationID, vehicleID := setupFleet(t, server, adminToken)

	start := time.Now().Add(5 * 24 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * 24 * time.Hour)

	body := map[string]interface{}{
		"vehicle_id":   vehicleID,
		"location_id":  locationID,
		"booking_date": start.Format(time.RFC3339),
		"return_date":  end.Format(time.RFC3339),
	}

	var bookingID string

	t.Run("ユーザーAが予約", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/bookings", body, tokenA)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		bookingID = decodeData(t, rec)["id"].(string)
	})

	t.Run("ユーザーBは他人の予約をキャンセルできない", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%s/cancel", bookingID)
		rec := server.Request("POST", path, map[string]interface{}{"reason": "横取り"}, tokenB)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("ユーザーAがキャンセル", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%s/cancel", bookingID)
		rec := server.Request("POST", path, map[string]interface{}{"reason": "予定変更"}, tokenA)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "cancelled", decodeData(t, rec)["status"])
	})

	t.Run("ユーザーBが同じ期間で予約に成功", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/bookings", body, tokenB)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})
}

// TestE2E_AuthFlow は認証と権限制御をテスト
func TestE2E_AuthFlow(t *testing.T) {
	server := getTestServer(t)

	t.Run("未認証ではアクセスできない", func(t *testing.T) {
		rec := server.Request("GET", "/api/v1/users/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	userToken, refreshToken := registerAndLogin(t, server, "taro@example.com")

	t.Run("一般ユーザーは車両を登録できない", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/vehicles", map[string]interface{}{
			"specification_id": "whatever",
			"location_id":      "whatever",
			"license_plate":    "品川 300 あ 99-99",
			"rental_rate":      100.0,
		}, userToken)
		require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
		assert.Equal(t, "forbidden", decodeBody(t, rec)["error"])
	})

	t.Run("自分のプロフィールを取得できる", func(t *testing.T) {
		rec := server.Request("GET", "/api/v1/users/me", nil, userToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "taro@example.com", decodeData(t, rec)["email"])
	})

	t.Run("リフレッシュトークンはローテーションされる", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/auth/refresh", map[string]interface{}{
			"refresh_token": refreshToken,
		}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decodeData(t, rec)
		assert.NotEmpty(t, data["access_token"])
		assert.NotEqual(t, refreshToken, data["refresh_token"])

		// 使用済みリフレッシュトークンは再利用できない
		rec = server.Request("POST", "/api/v1/auth/refresh", map[string]interface{}{
			"refresh_token": refreshToken,
		}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
	})
}

// TestE2E_SupportTicketFlow はサポートチケットの起票から解決までをテスト
func TestE2E_SupportTicketFlow(t *testing.T) {
	server := getTestServer(t)

	adminToken := registerAdmin(t, server, "admin@example.com")
	userToken, _ := registerAndLogin(t, server, "taro@example.com")

	// 招待コードでサポート担当者を登録
	rec := server.Request("POST", "/api/v1/auth/invites", map[string]interface{}{
		"role": "support_agent",
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inviteCode := decodeData(t, rec)["invite_code"].(string)

	rec = server.Request("POST", "/api/v1/auth/register", map[string]interface{}{
		"email":       "agent@example.com",
		"password":    "password-123",
		"first_name":  "次郎",
		"last_name":   "担当",
		"invite_code": inviteCode,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "support_agent", decodeData(t, rec)["role"])

	rec = server.Request("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    "agent@example.com",
		"password": "password-123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	agentData := decodeData(t, rec)
	agentToken := agentData["access_token"].(string)
	agentID := agentData["user"].(map[string]interface{})["id"].(string)

	var ticketID string

	t.Run("チケット起票", func(t *testing.T) {
		rec := server.Request("POST", "/api/v1/tickets", map[string]interface{}{
			"subject":     "カーナビが起動しない",
			"description": "エンジン始動後もナビの画面が真っ暗なままです",
			"priority":    "high",
		}, userToken)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		data := decodeData(t, rec)
		ticketID = data["id"].(string)
		assert.Equal(t, "open", data["status"])
	})

	t.Run("担当者アサイン", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/tickets/%s/assign", ticketID)
		rec := server.Request("PUT", path, map[string]interface{}{
			"agent_id": agentID,
		}, adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "in_progress", decodeData(t, rec)["status"])
	})

	t.Run("担当者が解決にする", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/tickets/%s/status", ticketID)
		rec := server.Request("PUT", path, map[string]interface{}{
			"status": "resolved",
		}, agentToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "resolved", decodeData(t, rec)["status"])
	})

	t.Run("起票者は一覧で自分のチケットを見る", func(t *testing.T) {
		rec := server.Request("GET", "/api/v1/tickets", nil, userToken)
		require.Equal(t, http.StatusOK, rec.Code)
		tickets, ok := decodeBody(t, rec)["data"].([]interface{})
		require.True(t, ok)
		require.Len(t, tickets, 1)
	})
}
