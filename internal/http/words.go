package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wordtrack/wordtrack/internal/entities"
)

// randomWordCount is how many catalog words GET /words/random returns.
const randomWordCount = 3

// WordsController serves the caller's word list and its mutations.
type WordsController struct {
	words WordService
}

func NewWordsController(words WordService) *WordsController {
	return &WordsController{words: words}
}

type addWordRequest struct {
	NewWord string `json:"newWord" binding:"required"`
}

type addWordResponse struct {
	Msg            string `json:"msg"`
	ID             uint   `json:"id,omitempty"`
	IsExistingWord bool   `json:"isExistingWord,omitempty"`
}

type setMasteredRequest struct {
	IsMastered *bool `json:"is_mastered" binding:"required"`
}

type editWordRequest struct {
	Word string `json:"word" binding:"required"`
}

type editWordResponse struct {
	Msg string `json:"msg"`
	ID  uint   `json:"id"`
}

// ListAll returns every word the caller tracks, newest first.
func (wc *WordsController) ListAll(c *gin.Context) {
	list, err := wc.words.ListWords(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list words")
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// WordsOfTheDay returns the caller's words due for review today.
func (wc *WordsController) WordsOfTheDay(c *gin.Context) {
	list, err := wc.words.WordsOfTheDay(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "words of the day")
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// Random returns a few catalog words for practice.
func (wc *WordsController) Random(c *gin.Context) {
	list, err := wc.words.RandomWords(c.Request.Context(), randomWordCount)
	if err != nil {
		respondInternalError(c, err, "random words")
		return
	}
	if list == nil {
		list = []entities.Word{}
	}
	c.JSON(http.StatusOK, gin.H{"words": list})
}

// Add starts tracking a word for the caller.
func (wc *WordsController) Add(c *gin.Context) {
	var req addWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "newWord is required")
		return
	}

	result, err := wc.words.AddWord(c.Request.Context(), GetUserID(c), req.NewWord)
	if err != nil {
		respondServiceError(c, err, "add word")
		return
	}

	if !result.Created {
		c.JSON(http.StatusOK, addWordResponse{Msg: "Word already exists", IsExistingWord: true})
		return
	}
	c.JSON(http.StatusCreated, addWordResponse{Msg: "Word added", ID: result.WordID})
}

// SetMastered flips the mastered flag on a tracked word.
func (wc *WordsController) SetMastered(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setMasteredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "is_mastered is required")
		return
	}

	if err := wc.words.SetMastered(c.Request.Context(), GetUserID(c), id, *req.IsMastered); err != nil {
		respondServiceError(c, err, "set mastered")
		return
	}
	respondMsg(c, "Word updated")
}

// Edit corrects the text of a tracked word.
func (wc *WordsController) Edit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req editWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "word is required")
		return
	}

	newID, err := wc.words.EditWord(c.Request.Context(), GetUserID(c), id, req.Word)
	if err != nil {
		respondServiceError(c, err, "edit word")
		return
	}
	c.JSON(http.StatusOK, editWordResponse{Msg: "Word updated", ID: newID})
}

// Delete stops tracking a word. The catalog entry is kept.
func (wc *WordsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := wc.words.RemoveWord(c.Request.Context(), GetUserID(c), id); err != nil {
		respondServiceError(c, err, "remove word")
		return
	}
	respondMsg(c, "Word deleted")
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
